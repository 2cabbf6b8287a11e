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
)

const defaultDueDays = 7

type ScheduleHandler struct {
	scheduleSvc service.ScheduleServiceInterface
}

func NewScheduleHandler(scheduleSvc service.ScheduleServiceInterface) *ScheduleHandler {
	return &ScheduleHandler{scheduleSvc: scheduleSvc}
}

func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	q := repository.ScheduleListQuery{
		PageRequest: pageRequestFromQuery(r),
		MachineID:   uintQuery(r, "machine_id"),
		Priority:    r.URL.Query().Get("priority"),
	}
	if raw := r.URL.Query().Get("active"); raw != "" {
		active := raw == "true" || raw == "1"
		q.Active = &active
	}
	result, err := h.scheduleSvc.List(r.Context(), q)
	if err != nil {
		response.DatabaseError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, result)
}

// Due lists active schedules due within the next `days` days, overdue
// included. Defaults to one week out.
func (h *ScheduleHandler) Due(w http.ResponseWriter, r *http.Request) {
	days := defaultDueDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "days must be a non-negative integer", nil)
			return
		}
		days = parsed
	}
	schedules, err := h.scheduleSvc.ListDue(r.Context(), days)
	if err != nil {
		response.DatabaseError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{
		"days":      days,
		"schedules": schedules,
	})
}

func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IDFromContext(r.Context(), "schedule_id")
	schedule, err := h.scheduleSvc.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrScheduleNotFound) {
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "schedule not found", nil)
			return
		}
		response.DatabaseError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, schedule)
}

func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _, err := authUserIDAndClaims(r)
	if err != nil {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid user", nil)
		return
	}
	var req struct {
		MachineID    uint       `json:"machine_id"`
		Title        string     `json:"title"`
		Description  string     `json:"description"`
		IntervalDays int        `json:"interval_days"`
		Priority     string     `json:"priority"`
		NextDueAt    *time.Time `json:"next_due_at"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	if req.MachineID == 0 || req.Title == "" {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "machine_id and title are required", nil)
		return
	}

	schedule, err := h.scheduleSvc.Create(r.Context(), service.CreateScheduleInput{
		MachineID:    req.MachineID,
		Title:        req.Title,
		Description:  req.Description,
		IntervalDays: req.IntervalDays,
		Priority:     req.Priority,
		NextDueAt:    req.NextDueAt,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrMachineNotFound):
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "machine not found", nil)
		case errors.Is(err, service.ErrInvalidInterval), errors.Is(err, service.ErrInvalidPriority):
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		default:
			response.DatabaseError(w, r, err)
		}
		return
	}

	observability.EmitAudit(r, observability.AuditInput{
		EventName:   "schedule.create",
		ActorUserID: observability.ActorUserID(userID),
		TargetType:  "maintenance_schedule",
		TargetID:    strconv.FormatUint(uint64(schedule.ID), 10),
		Action:      "create",
		Outcome:     "success",
		Reason:      "schedule_created",
	}, "machine_id", schedule.MachineID)
	response.JSON(w, r, http.StatusCreated, schedule)
}

func (h *ScheduleHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _, err := authUserIDAndClaims(r)
	if err != nil {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid user", nil)
		return
	}
	id, _ := middleware.IDFromContext(r.Context(), "schedule_id")
	var req struct {
		Title        *string    `json:"title"`
		Description  *string    `json:"description"`
		IntervalDays *int       `json:"interval_days"`
		Priority     *string    `json:"priority"`
		NextDueAt    *time.Time `json:"next_due_at"`
		Active       *bool      `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}

	schedule, err := h.scheduleSvc.Update(r.Context(), id, service.UpdateScheduleInput{
		Title:        req.Title,
		Description:  req.Description,
		IntervalDays: req.IntervalDays,
		Priority:     req.Priority,
		NextDueAt:    req.NextDueAt,
		Active:       req.Active,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrScheduleNotFound):
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "schedule not found", nil)
		case errors.Is(err, service.ErrInvalidInterval), errors.Is(err, service.ErrInvalidPriority):
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		default:
			response.DatabaseError(w, r, err)
		}
		return
	}

	observability.EmitAudit(r, observability.AuditInput{
		EventName:   "schedule.update",
		ActorUserID: observability.ActorUserID(userID),
		TargetType:  "maintenance_schedule",
		TargetID:    strconv.FormatUint(uint64(schedule.ID), 10),
		Action:      "update",
		Outcome:     "success",
		Reason:      "schedule_updated",
	})
	response.JSON(w, r, http.StatusOK, schedule)
}

func (h *ScheduleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _, err := authUserIDAndClaims(r)
	if err != nil {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid user", nil)
		return
	}
	id, _ := middleware.IDFromContext(r.Context(), "schedule_id")
	if err := h.scheduleSvc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrScheduleNotFound) {
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "schedule not found", nil)
			return
		}
		response.DatabaseError(w, r, err)
		return
	}

	observability.EmitAudit(r, observability.AuditInput{
		EventName:   "schedule.delete",
		ActorUserID: observability.ActorUserID(userID),
		TargetType:  "maintenance_schedule",
		TargetID:    strconv.FormatUint(uint64(id), 10),
		Action:      "delete",
		Outcome:     "success",
		Reason:      "schedule_deleted",
	})
	response.JSON(w, r, http.StatusOK, map[string]any{"deleted": true})
}
