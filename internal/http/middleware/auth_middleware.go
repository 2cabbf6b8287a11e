package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/domain"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/http/response"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/security"
)

type claimsContextKey struct{}

// ClaimsFromContext returns the verified access token claims placed by
// RequireAuth.
func ClaimsFromContext(ctx context.Context) (*security.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(*security.Claims)
	return claims, ok && claims != nil
}

type Auth struct {
	jwtMgr *security.JWTManager
}

func NewAuth(jwtMgr *security.JWTManager) *Auth {
	return &Auth{jwtMgr: jwtMgr}
}

// RequireAuth verifies the access token from the auth cookie or the
// Authorization header and stores its claims on the request context.
func (a *Auth) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := security.GetCookie(r, "access_token")
		if raw == "" {
			raw = bearerToken(r)
		}
		if raw == "" {
			response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing access token", nil)
			return
		}
		claims, err := a.jwtMgr.ParseAccessToken(raw)
		if err != nil {
			response.Error(w, r, http.StatusUnauthorized, "INVALID_OR_EXPIRED_TOKEN", "invalid or expired access token", nil)
			return
		}
		ctx := context.WithValue(r.Context(), claimsContextKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin allows only admin-role tokens through. Must run after
// RequireAuth.
func (a *Auth) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
			return
		}
		if claims.Role != domain.RoleAdmin {
			response.Error(w, r, http.StatusForbidden, "FORBIDDEN", "admin role required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(auth) >= len("bearer ")+1 && strings.EqualFold(auth[:len("bearer ")], "bearer ") {
		return strings.TrimSpace(auth[len("bearer "):])
	}
	return ""
}
