package database

import (
	"errors"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Symbolic error kinds surfaced to the HTTP layer.
const (
	CodeUniqueViolation      = "UNIQUE_VIOLATION"
	CodeInvalidReference     = "INVALID_REFERENCE"
	CodeMissingRequiredField = "MISSING_REQUIRED_FIELD"
	CodeCheckViolation       = "CHECK_VIOLATION"
	CodeSchemaMissing        = "SCHEMA_MISSING"
	CodeConnectionFailure    = "CONNECTION_FAILURE"
	CodeUnknownError         = "UNKNOWN_ERROR"
)

// ErrorDescriptor is the classified form of a persistence failure.
// Message is safe to show to the caller only when IsUserError is set.
type ErrorDescriptor struct {
	Message     string `json:"message"`
	Code        string `json:"code"`
	StatusCode  int    `json:"status_code"`
	IsUserError bool   `json:"is_user_error"`
}

// fieldLabels maps constraint/column name fragments to the Thai label used
// in user-facing messages. Order matters: first match wins, so the more
// specific fragments come first.
var fieldLabels = []struct {
	fragment string
	label    string
}{
	{"asset_tag", "รหัสเครื่องจักร"},
	{"email", "อีเมล"},
	{"schedule", "แผนบำรุงรักษา"},
	{"record", "บันทึกการบำรุงรักษา"},
	{"machine", "เครื่องจักร"},
	{"user", "ผู้ใช้งาน"},
	{"status", "สถานะ"},
	{"priority", "ระดับความสำคัญ"},
	{"performed_at", "วันที่ดำเนินการ"},
	{"next_due", "วันครบกำหนด"},
	{"interval_days", "รอบวันบำรุงรักษา"},
	{"cost", "ค่าใช้จ่าย"},
}

func lookupLabel(names ...string) (string, bool) {
	for _, entry := range fieldLabels {
		for _, name := range names {
			if name != "" && strings.Contains(name, entry.fragment) {
				return entry.label, true
			}
		}
	}
	return "", false
}

// Classify maps a persistence error to an ErrorDescriptor. It is total:
// every error maps to exactly one descriptor, with UNKNOWN_ERROR as the
// catch-all. Structured SQLSTATE codes win over message-substring matching.
func Classify(err error) ErrorDescriptor {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return classifyPG(pgErr)
	}

	msg := ""
	if err != nil {
		msg = err.Error()
	}
	switch {
	case strings.Contains(msg, "duplicate key value"),
		strings.Contains(msg, "UNIQUE constraint failed"):
		m := "ข้อมูลซ้ำกับที่มีอยู่ในระบบ"
		if label, ok := lookupLabel(msg); ok {
			m = label + "นี้มีอยู่ในระบบแล้ว"
		}
		return ErrorDescriptor{
			Message:     m,
			Code:        CodeUniqueViolation,
			StatusCode:  http.StatusConflict,
			IsUserError: true,
		}
	case strings.Contains(msg, "violates foreign key constraint"),
		strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return ErrorDescriptor{
			Message:     "ข้อมูลอ้างอิงไม่ถูกต้อง",
			Code:        CodeInvalidReference,
			StatusCode:  http.StatusBadRequest,
			IsUserError: true,
		}
	case strings.Contains(msg, "NOT NULL constraint failed"):
		m := "ข้อมูลที่จำเป็นไม่ครบถ้วน"
		if label, ok := lookupLabel(msg); ok {
			m = "กรุณาระบุ" + label
		}
		return ErrorDescriptor{
			Message:     m,
			Code:        CodeMissingRequiredField,
			StatusCode:  http.StatusBadRequest,
			IsUserError: true,
		}
	case strings.Contains(msg, "CHECK constraint failed"):
		return ErrorDescriptor{
			Message:     "ข้อมูลไม่ผ่านเงื่อนไขการตรวจสอบ",
			Code:        CodeCheckViolation,
			StatusCode:  http.StatusBadRequest,
			IsUserError: true,
		}
	}
	return ErrorDescriptor{
		Message:     "เกิดข้อผิดพลาดที่ไม่คาดคิด",
		Code:        CodeUnknownError,
		StatusCode:  http.StatusInternalServerError,
		IsUserError: false,
	}
}

func classifyPG(pgErr *pgconn.PgError) ErrorDescriptor {
	switch pgErr.Code {
	case "23505":
		msg := "ข้อมูลซ้ำกับที่มีอยู่ในระบบ"
		if label, ok := lookupLabel(pgErr.ConstraintName, pgErr.ColumnName); ok {
			msg = label + "นี้มีอยู่ในระบบแล้ว"
		}
		return ErrorDescriptor{Message: msg, Code: CodeUniqueViolation, StatusCode: http.StatusConflict, IsUserError: true}
	case "23503":
		msg := "ข้อมูลอ้างอิงไม่ถูกต้อง"
		if label, ok := lookupLabel(pgErr.ConstraintName, pgErr.ColumnName); ok {
			msg = "ไม่พบ" + label + "ที่อ้างอิง"
		}
		return ErrorDescriptor{Message: msg, Code: CodeInvalidReference, StatusCode: http.StatusBadRequest, IsUserError: true}
	case "23502":
		msg := "ข้อมูลที่จำเป็นไม่ครบถ้วน"
		if label, ok := lookupLabel(pgErr.ColumnName, pgErr.ConstraintName); ok {
			msg = "กรุณาระบุ" + label
		}
		return ErrorDescriptor{Message: msg, Code: CodeMissingRequiredField, StatusCode: http.StatusBadRequest, IsUserError: true}
	case "23514":
		msg := "ข้อมูลไม่ผ่านเงื่อนไขการตรวจสอบ"
		if label, ok := lookupLabel(pgErr.ConstraintName, pgErr.ColumnName); ok {
			msg = label + "ไม่อยู่ในช่วงที่กำหนด"
		}
		return ErrorDescriptor{Message: msg, Code: CodeCheckViolation, StatusCode: http.StatusBadRequest, IsUserError: true}
	case "42P01", "42703":
		return ErrorDescriptor{
			Message:     "เกิดข้อผิดพลาดภายในระบบ",
			Code:        CodeSchemaMissing,
			StatusCode:  http.StatusInternalServerError,
			IsUserError: false,
		}
	}
	if strings.HasPrefix(pgErr.Code, "08") {
		return ErrorDescriptor{
			Message:     "ไม่สามารถเชื่อมต่อฐานข้อมูลได้ กรุณาลองใหม่อีกครั้ง",
			Code:        CodeConnectionFailure,
			StatusCode:  http.StatusServiceUnavailable,
			IsUserError: false,
		}
	}
	return ErrorDescriptor{
		Message:     "เกิดข้อผิดพลาดที่ไม่คาดคิด",
		Code:        CodeUnknownError,
		StatusCode:  http.StatusInternalServerError,
		IsUserError: false,
	}
}
