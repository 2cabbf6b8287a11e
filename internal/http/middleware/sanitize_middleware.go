package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/sanitize"
)

const maxSanitizedBody = 1 << 20 // 1 MB

// SanitizeBody strips markup from every string in a JSON request body and
// drops object keys that clean down to nothing. Non-JSON and unparseable
// bodies pass through untouched; the handler's decoder reports those.
func SanitizeBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body == nil || !hasJSONBody(r) {
			next.ServeHTTP(w, r)
			return
		}
		raw, err := io.ReadAll(io.LimitReader(r.Body, maxSanitizedBody+1))
		_ = r.Body.Close()
		if err != nil || len(raw) > maxSanitizedBody {
			r.Body = io.NopCloser(bytes.NewReader(raw))
			next.ServeHTTP(w, r)
			return
		}

		var payload any
		if err := json.Unmarshal(raw, &payload); err != nil {
			r.Body = io.NopCloser(bytes.NewReader(raw))
			next.ServeHTTP(w, r)
			return
		}
		cleaned, err := json.Marshal(sanitize.Sanitize(payload))
		if err != nil {
			r.Body = io.NopCloser(bytes.NewReader(raw))
			next.ServeHTTP(w, r)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(cleaned))
		r.ContentLength = int64(len(cleaned))
		next.ServeHTTP(w, r)
	})
}

func hasJSONBody(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
	default:
		return false
	}
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	return strings.HasPrefix(strings.TrimSpace(ct), "application/json")
}
