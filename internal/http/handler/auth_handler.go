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
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/security"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/service"
)

type AuthHandler struct {
	sessionSvc service.SessionServiceInterface
	cookies    *security.CookieManager
	accessTTL  time.Duration
	sessionTTL time.Duration
}

func NewAuthHandler(sessionSvc service.SessionServiceInterface, cookies *security.CookieManager, accessTTL, sessionTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		sessionSvc: sessionSvc,
		cookies:    cookies,
		accessTTL:  accessTTL,
		sessionTTL: sessionTTL,
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	if req.Email == "" || req.Password == "" {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "email and password are required", nil)
		return
	}

	result, err := h.sessionSvc.Login(r.Context(), req.Email, req.Password, r.UserAgent(), clientAddr(r))
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) || errors.Is(err, service.ErrUserDisabled) {
			observability.EmitAudit(r, observability.AuditInput{
				EventName:  "auth.login",
				TargetType: "user",
				TargetID:   req.Email,
				Action:     "login",
				Outcome:    "denied",
				Reason:     "invalid_credentials",
			})
			response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid email or password", nil)
			return
		}
		response.DatabaseError(w, r, err)
		return
	}

	h.cookies.SetTokenCookies(w, result.AccessToken, result.RefreshToken, h.accessTTL, h.sessionTTL)
	observability.EmitAudit(r, observability.AuditInput{
		EventName:   "auth.login",
		ActorUserID: observability.ActorUserID(result.User.ID),
		TargetType:  "user",
		TargetID:    strconv.FormatUint(uint64(result.User.ID), 10),
		Action:      "login",
		Outcome:     "success",
		Reason:      "session_created",
	})
	response.JSON(w, r, http.StatusOK, map[string]any{
		"user":         result.User,
		"access_token": result.AccessToken,
	})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshToken := security.GetCookie(r, "refresh_token")
	if refreshToken == "" {
		var req struct {
			RefreshToken string `json:"refresh_token"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		refreshToken = req.RefreshToken
	}
	if refreshToken == "" {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing refresh token", nil)
		return
	}

	result, err := h.sessionSvc.Refresh(r.Context(), refreshToken)
	if err != nil {
		if errors.Is(err, service.ErrSessionExpired) || errors.Is(err, service.ErrUserDisabled) {
			response.Error(w, r, http.StatusUnauthorized, "INVALID_OR_EXPIRED_TOKEN", "session expired, please log in again", nil)
			return
		}
		response.DatabaseError(w, r, err)
		return
	}

	h.cookies.SetTokenCookies(w, result.AccessToken, result.RefreshToken, h.accessTTL, h.sessionTTL)
	response.JSON(w, r, http.StatusOK, map[string]any{
		"access_token": result.AccessToken,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	refreshToken := security.GetCookie(r, "refresh_token")
	if err := h.sessionSvc.Logout(r.Context(), refreshToken); err != nil {
		response.DatabaseError(w, r, err)
		return
	}
	h.cookies.ClearTokenCookies(w)
	response.JSON(w, r, http.StatusOK, map[string]any{"logged_out": true})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, claims, err := authUserIDAndClaims(r)
	if err != nil {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid user", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{
		"user_id": userID,
		"role":    claims.Role,
	})
}

func (h *AuthHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	userID, _, err := authUserIDAndClaims(r)
	if err != nil {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid user", nil)
		return
	}
	currentHash := ""
	if svc, ok := h.sessionSvc.(*service.SessionService); ok {
		currentHash = svc.CurrentSessionHash(security.GetCookie(r, "refresh_token"))
	}
	views, err := h.sessionSvc.ListActiveSessions(userID, currentHash)
	if err != nil {
		response.DatabaseError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, views)
}

func (h *AuthHandler) RevokeSession(w http.ResponseWriter, r *http.Request) {
	userID, _, err := authUserIDAndClaims(r)
	if err != nil {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid user", nil)
		return
	}
	sessionID, ok := middleware.IDFromContext(r.Context(), "session_id")
	if !ok {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid session id", nil)
		return
	}

	revoked, err := h.sessionSvc.RevokeSession(r.Context(), userID, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "session not found", nil)
			return
		}
		response.DatabaseError(w, r, err)
		return
	}

	observability.EmitAudit(r, observability.AuditInput{
		EventName:   "session.revoke",
		ActorUserID: observability.ActorUserID(userID),
		TargetType:  "session",
		TargetID:    strconv.FormatUint(uint64(sessionID), 10),
		Action:      "revoke",
		Outcome:     "success",
		Reason:      "session_revoked",
	}, "already_revoked", !revoked)
	response.JSON(w, r, http.StatusOK, map[string]any{"revoked": revoked})
}

func authUserIDAndClaims(r *http.Request) (uint, *security.Claims, error) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return 0, nil, errors.New("missing auth context")
	}
	id64, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return 0, nil, err
	}
	return uint(id64), claims, nil
}

func clientAddr(r *http.Request) string {
	return r.RemoteAddr
}
