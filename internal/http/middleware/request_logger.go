package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// captureWriter records the status code and the first previewLen bytes of
// the response body while passing everything through.
type captureWriter struct {
	http.ResponseWriter
	status     int
	preview    []byte
	previewLen int
}

func (cw *captureWriter) WriteHeader(status int) {
	cw.status = status
	cw.ResponseWriter.WriteHeader(status)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	if cw.status == 0 {
		cw.status = http.StatusOK
	}
	if remaining := cw.previewLen - len(cw.preview); remaining > 0 {
		take := b
		if len(take) > remaining {
			take = take[:remaining]
		}
		cw.preview = append(cw.preview, take...)
	}
	return cw.ResponseWriter.Write(b)
}

// RequestLogger logs one line per API request: method, path, status, wall
// time and a truncated response preview. Paths outside pathPrefix pass
// through silently. Log lines are clamped to lineMax runes so a fat
// payload cannot flood the log.
func RequestLogger(logger *slog.Logger, pathPrefix string, previewLen, lineMax int) func(http.Handler) http.Handler {
	if previewLen <= 0 {
		previewLen = 200
	}
	if lineMax <= 0 {
		lineMax = 120
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if pathPrefix != "" && !strings.HasPrefix(r.URL.Path, pathPrefix) {
				next.ServeHTTP(w, r)
				return
			}
			cw := &captureWriter{ResponseWriter: w, previewLen: previewLen}
			start := time.Now()
			next.ServeHTTP(cw, r)
			duration := time.Since(start)

			status := cw.status
			if status == 0 {
				status = http.StatusOK
			}
			logger.InfoContext(r.Context(), "http request",
				"method", r.Method,
				"path", clampLine(r.URL.Path, lineMax),
				"status", status,
				"duration_ms", duration.Milliseconds(),
				"preview", clampLine(string(cw.preview), lineMax),
			)
		})
	}
}

// clampLine truncates on rune boundaries so multibyte text is never cut
// mid-character.
func clampLine(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
