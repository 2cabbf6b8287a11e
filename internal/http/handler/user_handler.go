package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/http/middleware"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/http/response"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/observability"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/repository"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/service"
)

type UserHandler struct {
	userSvc service.UserServiceInterface
}

func NewUserHandler(userSvc service.UserServiceInterface) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	q := repository.UserListQuery{
		PageRequest: pageRequestFromQuery(r),
		Role:        r.URL.Query().Get("role"),
		Status:      r.URL.Query().Get("status"),
		Email:       r.URL.Query().Get("email"),
	}
	result, err := h.userSvc.List(r.Context(), q)
	if err != nil {
		response.DatabaseError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, result)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IDFromContext(r.Context(), "user_id")
	user, err := h.userSvc.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "user not found", nil)
			return
		}
		response.DatabaseError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, user)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	actorID, _, err := authUserIDAndClaims(r)
	if err != nil {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid user", nil)
		return
	}
	var req struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	if req.Email == "" || req.Name == "" || req.Password == "" {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "email, name and password are required", nil)
		return
	}

	user, err := h.userSvc.Create(r.Context(), service.CreateUserInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidRole) || errors.Is(err, service.ErrPasswordTooShort) {
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
			return
		}
		response.DatabaseError(w, r, err)
		return
	}

	observability.EmitAudit(r, observability.AuditInput{
		EventName:   "user.create",
		ActorUserID: observability.ActorUserID(actorID),
		TargetType:  "user",
		TargetID:    strconv.FormatUint(uint64(user.ID), 10),
		Action:      "create",
		Outcome:     "success",
		Reason:      "user_created",
	}, "role", user.Role)
	response.JSON(w, r, http.StatusCreated, user)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	actorID, _, err := authUserIDAndClaims(r)
	if err != nil {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid user", nil)
		return
	}
	id, _ := middleware.IDFromContext(r.Context(), "user_id")
	var req struct {
		Name     *string `json:"name"`
		Password *string `json:"password"`
		Role     *string `json:"role"`
		Status   *string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}

	user, err := h.userSvc.Update(r.Context(), id, service.UpdateUserInput{
		Name:     req.Name,
		Password: req.Password,
		Role:     req.Role,
		Status:   req.Status,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "user not found", nil)
		case errors.Is(err, service.ErrInvalidRole),
			errors.Is(err, service.ErrInvalidUserStatus),
			errors.Is(err, service.ErrPasswordTooShort):
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		default:
			response.DatabaseError(w, r, err)
		}
		return
	}

	observability.EmitAudit(r, observability.AuditInput{
		EventName:   "user.update",
		ActorUserID: observability.ActorUserID(actorID),
		TargetType:  "user",
		TargetID:    strconv.FormatUint(uint64(user.ID), 10),
		Action:      "update",
		Outcome:     "success",
		Reason:      "user_updated",
	})
	response.JSON(w, r, http.StatusOK, user)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, _, err := authUserIDAndClaims(r)
	if err != nil {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid user", nil)
		return
	}
	id, _ := middleware.IDFromContext(r.Context(), "user_id")
	if id == actorID {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "cannot delete your own account", nil)
		return
	}
	if err := h.userSvc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "user not found", nil)
			return
		}
		response.DatabaseError(w, r, err)
		return
	}

	observability.EmitAudit(r, observability.AuditInput{
		EventName:   "user.delete",
		ActorUserID: observability.ActorUserID(actorID),
		TargetType:  "user",
		TargetID:    strconv.FormatUint(uint64(id), 10),
		Action:      "delete",
		Outcome:     "success",
		Reason:      "user_deleted",
	})
	response.JSON(w, r, http.StatusOK, map[string]any{"deleted": true})
}
