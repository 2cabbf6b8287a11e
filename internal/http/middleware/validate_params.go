package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/http/response"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/validate"
)

type idContextKey string

// RequireIDParam validates the named chi URL parameter as a positive
// integer before the handler runs, so handlers never see a malformed ID.
func RequireIDParam(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := chi.URLParam(r, name)
			id, err := validate.PositiveInt(raw, name)
			if err != nil {
				response.ValidationError(w, r, err)
				return
			}
			ctx := context.WithValue(r.Context(), idContextKey(name), uint(id))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IDFromContext returns the validated value of a RequireIDParam parameter.
func IDFromContext(ctx context.Context, name string) (uint, bool) {
	id, ok := ctx.Value(idContextKey(name)).(uint)
	return id, ok
}
