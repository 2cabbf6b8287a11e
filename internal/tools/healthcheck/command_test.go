package healthcheck

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewRootCommandHasRun(t *testing.T) {
	cmd := NewRootCommand()
	if cmd.Use != "healthcheck" {
		t.Fatalf("unexpected use: %s", cmd.Use)
	}
	if c, _, err := cmd.Find([]string{"run"}); err != nil || c == nil {
		t.Fatalf("expected run subcommand: err=%v", err)
	}
}

func TestAPIGETInvalidURLAndHTTPError(t *testing.T) {
	if _, err := apiGET(context.Background(), options{apiURL: "://bad"}, "/x"); err == nil {
		t.Fatal("expected parse url error")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	if _, err := apiGET(context.Background(), options{apiURL: srv.URL}, "/x"); err == nil {
		t.Fatal("expected http status error")
	}
}

func TestFetchHealthStatusMissingStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{}}`))
	}))
	defer srv.Close()

	if _, err := fetchHealthStatus(context.Background(), options{apiURL: srv.URL}); err == nil {
		t.Fatal("expected missing status error")
	}
}

func TestFetchHealthStatusOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"status":"ok","database":"ok"}}`))
	}))
	defer srv.Close()

	got, err := fetchHealthStatus(context.Background(), options{apiURL: srv.URL})
	if err != nil {
		t.Fatalf("fetch health status: %v", err)
	}
	if got != "ok" {
		t.Fatalf("unexpected status %q", got)
	}
}
