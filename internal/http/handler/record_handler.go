package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/http/middleware"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/http/response"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/observability"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/repository"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/service"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/validate"
)

const maxUploadMemory = 10 << 20

type RecordHandler struct {
	recordSvc service.RecordServiceInterface
}

func NewRecordHandler(recordSvc service.RecordServiceInterface) *RecordHandler {
	return &RecordHandler{recordSvc: recordSvc}
}

func (h *RecordHandler) List(w http.ResponseWriter, r *http.Request) {
	q := repository.RecordListQuery{
		PageRequest: pageRequestFromQuery(r),
		MachineID:   uintQuery(r, "machine_id"),
		ScheduleID:  uintQuery(r, "schedule_id"),
		Status:      r.URL.Query().Get("status"),
		MaxCost:     validate.OptionalNumber(r.URL.Query().Get("max_cost"), 0, 0, 1e12),
	}
	result, err := h.recordSvc.List(r.Context(), q)
	if err != nil {
		response.DatabaseError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, result)
}

func (h *RecordHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IDFromContext(r.Context(), "record_id")
	record, err := h.recordSvc.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "maintenance record not found", nil)
			return
		}
		response.DatabaseError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, record)
}

func (h *RecordHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _, err := authUserIDAndClaims(r)
	if err != nil {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid user", nil)
		return
	}
	var req struct {
		MachineID   uint       `json:"machine_id"`
		ScheduleID  *uint      `json:"schedule_id"`
		PerformedAt *time.Time `json:"performed_at"`
		Description string     `json:"description"`
		Cost        float64    `json:"cost"`
		Status      string     `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	if req.MachineID == 0 || req.Description == "" {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "machine_id and description are required", nil)
		return
	}

	in := service.CreateRecordInput{
		MachineID:   req.MachineID,
		ScheduleID:  req.ScheduleID,
		Description: req.Description,
		Cost:        req.Cost,
		Status:      req.Status,
	}
	if req.PerformedAt != nil {
		in.PerformedAt = *req.PerformedAt
	}

	record, err := h.recordSvc.Create(r.Context(), in, userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrMachineNotFound), errors.Is(err, repository.ErrScheduleNotFound):
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		case errors.Is(err, service.ErrNegativeCost),
			errors.Is(err, service.ErrInvalidRecordStatus),
			errors.Is(err, service.ErrScheduleMismatch):
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		default:
			response.DatabaseError(w, r, err)
		}
		return
	}

	observability.EmitAudit(r, observability.AuditInput{
		EventName:   "record.create",
		ActorUserID: observability.ActorUserID(userID),
		TargetType:  "maintenance_record",
		TargetID:    strconv.FormatUint(uint64(record.ID), 10),
		Action:      "create",
		Outcome:     "success",
		Reason:      "record_created",
	}, "machine_id", record.MachineID, "status", record.Status)
	response.JSON(w, r, http.StatusCreated, record)
}

func (h *RecordHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _, err := authUserIDAndClaims(r)
	if err != nil {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid user", nil)
		return
	}
	id, _ := middleware.IDFromContext(r.Context(), "record_id")
	var req struct {
		PerformedAt *time.Time `json:"performed_at"`
		Description *string    `json:"description"`
		Cost        *float64   `json:"cost"`
		Status      *string    `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}

	record, err := h.recordSvc.Update(r.Context(), id, service.UpdateRecordInput{
		PerformedAt: req.PerformedAt,
		Description: req.Description,
		Cost:        req.Cost,
		Status:      req.Status,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "maintenance record not found", nil)
		case errors.Is(err, service.ErrNegativeCost), errors.Is(err, service.ErrInvalidRecordStatus):
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		default:
			response.DatabaseError(w, r, err)
		}
		return
	}

	observability.EmitAudit(r, observability.AuditInput{
		EventName:   "record.update",
		ActorUserID: observability.ActorUserID(userID),
		TargetType:  "maintenance_record",
		TargetID:    strconv.FormatUint(uint64(record.ID), 10),
		Action:      "update",
		Outcome:     "success",
		Reason:      "record_updated",
	})
	response.JSON(w, r, http.StatusOK, record)
}

func (h *RecordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _, err := authUserIDAndClaims(r)
	if err != nil {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid user", nil)
		return
	}
	id, _ := middleware.IDFromContext(r.Context(), "record_id")
	if err := h.recordSvc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "maintenance record not found", nil)
			return
		}
		response.DatabaseError(w, r, err)
		return
	}

	observability.EmitAudit(r, observability.AuditInput{
		EventName:   "record.delete",
		ActorUserID: observability.ActorUserID(userID),
		TargetType:  "maintenance_record",
		TargetID:    strconv.FormatUint(uint64(id), 10),
		Action:      "delete",
		Outcome:     "success",
		Reason:      "record_deleted",
	})
	response.JSON(w, r, http.StatusOK, map[string]any{"deleted": true})
}

// UploadAttachment accepts a multipart form with a single "file" part.
func (h *RecordHandler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	userID, _, err := authUserIDAndClaims(r)
	if err != nil {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid user", nil)
		return
	}
	id, _ := middleware.IDFromContext(r.Context(), "record_id")

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid multipart form", nil)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "file part is required", nil)
		return
	}
	defer file.Close()

	record, err := h.recordSvc.AttachFile(r.Context(), id, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "maintenance record not found", nil)
		case errors.Is(err, service.ErrAttachmentTooBig), errors.Is(err, service.ErrInvalidFileType):
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		default:
			response.DatabaseError(w, r, err)
		}
		return
	}

	observability.EmitAudit(r, observability.AuditInput{
		EventName:   "record.attach",
		ActorUserID: observability.ActorUserID(userID),
		TargetType:  "maintenance_record",
		TargetID:    strconv.FormatUint(uint64(record.ID), 10),
		Action:      "attach",
		Outcome:     "success",
		Reason:      "attachment_stored",
	}, "filename", header.Filename, "size", header.Size)
	response.JSON(w, r, http.StatusOK, record)
}

func (h *RecordHandler) AttachmentURL(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IDFromContext(r.Context(), "record_id")
	url, err := h.recordSvc.AttachmentURL(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "maintenance record not found", nil)
		case errors.Is(err, service.ErrNoAttachment):
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "record has no attachment", nil)
		default:
			response.DatabaseError(w, r, err)
		}
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"url": url})
}

// MonthlyReport summarizes maintenance activity for ?year=YYYY&month=MM.
func (h *RecordHandler) MonthlyReport(w http.ResponseWriter, r *http.Request) {
	year, month, err := validate.DateRange(r.URL.Query().Get("year"), r.URL.Query().Get("month"))
	if err != nil {
		response.ValidationError(w, r, err)
		return
	}
	report, err := h.recordSvc.MonthlyReport(r.Context(), year, month)
	if err != nil {
		response.DatabaseError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, report)
}
