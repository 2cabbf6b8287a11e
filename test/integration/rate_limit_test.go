package integration

import (
	"net/http"
	"testing"
	"time"

	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/http/middleware"
)

func TestRateLimitRejectsOverLimit(t *testing.T) {
	limiter := middleware.NewRateLimiter(2, time.Minute)
	env, done := newTestServer(t, limiter)
	defer done()

	// The limiter counts per IP and path; two hits pass, the third is cut.
	for i := 0; i < 2; i++ {
		resp, _ := doRawText(t, env.client, http.MethodGet, env.baseURL+"/health", "", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, resp.StatusCode)
		}
	}

	resp, bodyJSON := doJSON(t, env.client, http.MethodGet, env.baseURL+"/health", nil, nil)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on third request, got %d", resp.StatusCode)
	}
	if bodyJSON.Error == nil || bodyJSON.Error.Code != "RATE_LIMITED" {
		t.Fatalf("expected RATE_LIMITED, got %+v", bodyJSON.Error)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Fatalf("expected a Retry-After header on 429")
	}
}

func TestRateLimitBucketsPerPath(t *testing.T) {
	limiter := middleware.NewRateLimiter(1, time.Minute)
	env, done := newTestServer(t, limiter)
	defer done()

	if resp, _ := doRawText(t, env.client, http.MethodGet, env.baseURL+"/health", "", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("first /health: expected 200, got %d", resp.StatusCode)
	}
	if resp, _ := doRawText(t, env.client, http.MethodGet, env.baseURL+"/health", "", nil); resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("second /health: expected 429, got %d", resp.StatusCode)
	}

	// A different path has its own counter and still gets through.
	resp, _ := doJSON(t, env.client, http.MethodPost, env.baseURL+"/api/v1/auth/login", map[string]string{
		"email":    testAdminEmail,
		"password": testAdminPassword,
	}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login on a fresh path: expected 200, got %d", resp.StatusCode)
	}
}
