// Package validate holds the scalar input validators shared by the HTTP
// layer and config loading. Strict parsers return a FieldError naming the
// offending field; OptionalNumber is deliberately lenient and coalesces
// bad input to a caller default instead of failing.
package validate

import (
	"fmt"
	"strconv"
	"strings"
)

const DefaultPort = 8080

// FieldError is a user-facing validation failure for a single field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *FieldError) Error() string { return fmt.Sprintf("%s: %s", e.Field, e.Message) }

func invalid(field, message string) *FieldError {
	return &FieldError{Field: field, Message: message}
}

// PositiveInt parses value as a strictly positive base-10 integer.
func PositiveInt(value, field string) (int, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return 0, invalid(field, "กรุณาระบุค่า")
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, invalid(field, "ต้องเป็นจำนวนเต็ม")
	}
	if n <= 0 {
		return 0, invalid(field, "ต้องเป็นจำนวนเต็มบวก")
	}
	return n, nil
}

// OptionalNumber parses value leniently: absent, non-numeric, or out-of-range
// input yields def. It never fails; strict parsing belongs to PositiveInt.
func OptionalNumber(value string, def, min, max float64) float64 {
	v := strings.TrimSpace(value)
	if v == "" {
		return def
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	if n < min || n > max {
		return def
	}
	return n
}

// Port parses an HTTP port, defaulting when absent.
func Port(value string) (int, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return DefaultPort, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > 65535 {
		return 0, invalid("port", "ต้องเป็นหมายเลขพอร์ตระหว่าง 1 ถึง 65535")
	}
	return n, nil
}

// DateRange parses a report year/month pair.
func DateRange(year, month string) (int, int, error) {
	y, err := strconv.Atoi(strings.TrimSpace(year))
	if err != nil || y < 1900 || y > 2100 {
		return 0, 0, invalid("year", "ต้องเป็นปีระหว่าง 1900 ถึง 2100")
	}
	m, err := strconv.Atoi(strings.TrimSpace(month))
	if err != nil || m < 1 || m > 12 {
		return 0, 0, invalid("month", "ต้องเป็นเดือนระหว่าง 1 ถึง 12")
	}
	return y, m, nil
}
