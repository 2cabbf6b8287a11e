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

type MachineHandler struct {
	machineSvc service.MachineServiceInterface
}

func NewMachineHandler(machineSvc service.MachineServiceInterface) *MachineHandler {
	return &MachineHandler{machineSvc: machineSvc}
}

func (h *MachineHandler) List(w http.ResponseWriter, r *http.Request) {
	q := repository.MachineListQuery{
		PageRequest: pageRequestFromQuery(r),
		Status:      r.URL.Query().Get("status"),
		Location:    r.URL.Query().Get("location"),
		Search:      r.URL.Query().Get("search"),
	}
	result, err := h.machineSvc.List(r.Context(), q)
	if err != nil {
		response.DatabaseError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, result)
}

func (h *MachineHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IDFromContext(r.Context(), "machine_id")
	machine, err := h.machineSvc.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrMachineNotFound) {
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "machine not found", nil)
			return
		}
		response.DatabaseError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, machine)
}

func (h *MachineHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _, err := authUserIDAndClaims(r)
	if err != nil {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid user", nil)
		return
	}
	var req struct {
		AssetTag     string     `json:"asset_tag"`
		Name         string     `json:"name"`
		Location     string     `json:"location"`
		SerialNumber string     `json:"serial_number"`
		Status       string     `json:"status"`
		InstalledAt  *time.Time `json:"installed_at"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	if req.AssetTag == "" || req.Name == "" {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "asset_tag and name are required", nil)
		return
	}

	machine, err := h.machineSvc.Create(r.Context(), service.CreateMachineInput{
		AssetTag:     req.AssetTag,
		Name:         req.Name,
		Location:     req.Location,
		SerialNumber: req.SerialNumber,
		Status:       req.Status,
		InstalledAt:  req.InstalledAt,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidMachineStatus) {
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
			return
		}
		response.DatabaseError(w, r, err)
		return
	}

	observability.EmitAudit(r, observability.AuditInput{
		EventName:   "machine.create",
		ActorUserID: observability.ActorUserID(userID),
		TargetType:  "machine",
		TargetID:    strconv.FormatUint(uint64(machine.ID), 10),
		Action:      "create",
		Outcome:     "success",
		Reason:      "machine_created",
	}, "asset_tag", machine.AssetTag)
	response.JSON(w, r, http.StatusCreated, machine)
}

func (h *MachineHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _, err := authUserIDAndClaims(r)
	if err != nil {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid user", nil)
		return
	}
	id, _ := middleware.IDFromContext(r.Context(), "machine_id")
	var req struct {
		Name         *string    `json:"name"`
		Location     *string    `json:"location"`
		SerialNumber *string    `json:"serial_number"`
		Status       *string    `json:"status"`
		InstalledAt  *time.Time `json:"installed_at"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}

	machine, err := h.machineSvc.Update(r.Context(), id, service.UpdateMachineInput{
		Name:         req.Name,
		Location:     req.Location,
		SerialNumber: req.SerialNumber,
		Status:       req.Status,
		InstalledAt:  req.InstalledAt,
	}, userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrMachineNotFound):
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "machine not found", nil)
		case errors.Is(err, service.ErrInvalidMachineStatus):
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		default:
			response.DatabaseError(w, r, err)
		}
		return
	}

	observability.EmitAudit(r, observability.AuditInput{
		EventName:   "machine.update",
		ActorUserID: observability.ActorUserID(userID),
		TargetType:  "machine",
		TargetID:    strconv.FormatUint(uint64(machine.ID), 10),
		Action:      "update",
		Outcome:     "success",
		Reason:      "machine_updated",
	})
	response.JSON(w, r, http.StatusOK, machine)
}

func (h *MachineHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _, err := authUserIDAndClaims(r)
	if err != nil {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid user", nil)
		return
	}
	id, _ := middleware.IDFromContext(r.Context(), "machine_id")
	if err := h.machineSvc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrMachineNotFound) {
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "machine not found", nil)
			return
		}
		response.DatabaseError(w, r, err)
		return
	}

	observability.EmitAudit(r, observability.AuditInput{
		EventName:   "machine.delete",
		ActorUserID: observability.ActorUserID(userID),
		TargetType:  "machine",
		TargetID:    strconv.FormatUint(uint64(id), 10),
		Action:      "delete",
		Outcome:     "success",
		Reason:      "machine_deleted",
	})
	response.JSON(w, r, http.StatusOK, map[string]any{"deleted": true})
}

func (h *MachineHandler) History(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IDFromContext(r.Context(), "machine_id")
	history, err := h.machineSvc.History(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrMachineNotFound) {
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "machine not found", nil)
			return
		}
		response.DatabaseError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, history)
}
