package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func lastLogLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &entry); err != nil {
		t.Fatalf("parse log line %q: %v", lines[len(lines)-1], err)
	}
	return entry
}

func TestRequestLoggerLogsAPIRequests(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := RequestLogger(logger, "/api", 200, 120)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"success":true}`))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/machines", nil))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status passthrough broken: %d", rec.Code)
	}
	entry := lastLogLine(t, &buf)
	if entry["method"] != "POST" || entry["path"] != "/api/v1/machines" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	if entry["status"] != float64(http.StatusCreated) {
		t.Fatalf("status = %v", entry["status"])
	}
	if entry["preview"] != `{"success":true}` {
		t.Fatalf("preview = %v", entry["preview"])
	}
}

func TestRequestLoggerSkipsPathsOutsidePrefix(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := RequestLogger(logger, "/api", 200, 120)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if buf.Len() != 0 {
		t.Fatalf("expected no log output, got %q", buf.String())
	}
}

func TestRequestLoggerClampsPreviewOnRuneBoundary(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	body := strings.Repeat("ก", 500)
	handler := RequestLogger(logger, "/api", 1000, 50)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports", nil))

	entry := lastLogLine(t, &buf)
	preview, _ := entry["preview"].(string)
	runes := []rune(preview)
	if len(runes) != 51 || runes[50] != '…' {
		t.Fatalf("preview not clamped to 50 runes plus ellipsis: len=%d", len(runes))
	}
	if strings.ContainsRune(preview, '�') {
		t.Fatalf("preview cut mid-character: %q", preview)
	}
	// Implicit WriteHeader still records 200.
	if entry["status"] != float64(http.StatusOK) {
		t.Fatalf("status = %v", entry["status"])
	}
}

func TestClampLine(t *testing.T) {
	if got := clampLine("short", 120); got != "short" {
		t.Fatalf("clampLine(short) = %q", got)
	}
	if got := clampLine("abcdef", 3); got != "abc…" {
		t.Fatalf("clampLine = %q", got)
	}
	if got := clampLine("anything", 0); got != "anything" {
		t.Fatalf("zero max should disable clamping, got %q", got)
	}
}
