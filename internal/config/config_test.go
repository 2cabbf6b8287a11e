package config

import (
	"strings"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	// Neutralize anything the host environment might carry.
	for _, key := range []string{"APP_ENV", "HTTP_PORT", "JWT_ACCESS_TTL", "SESSION_TTL", "RATE_LIMIT_WINDOW", "RATE_LIMITING_ENABLED", "VERBOSE_ERROR_LOGGING", "COOKIE_SAMESITE", "COOKIE_SECURE"} {
		t.Setenv(key, "")
	}
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/maintenance?sslmode=disable")
	t.Setenv("JWT_ACCESS_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("REFRESH_TOKEN_PEPPER", "test-pepper-0123456789")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Env != "development" || cfg.HTTPPort != "8080" {
		t.Fatalf("env defaults: %+v", cfg)
	}
	if cfg.JWTAccessTTL != 15*time.Minute || cfg.SessionTTL != 168*time.Hour {
		t.Fatalf("ttl defaults: access=%v session=%v", cfg.JWTAccessTTL, cfg.SessionTTL)
	}
	if cfg.RateLimitingEnabled {
		t.Fatal("rate limiting should be off outside production")
	}
	if cfg.RateLimitWindow != time.Minute || cfg.RateLimitMax != 100 {
		t.Fatalf("rate limit defaults: %v/%d", cfg.RateLimitWindow, cfg.RateLimitMax)
	}
	if !cfg.VerboseErrorLogging {
		t.Fatal("verbose error logging should default on outside production")
	}
	if cfg.CookieSameSite != "lax" || !cfg.CookieSecure {
		t.Fatalf("cookie defaults: samesite=%q secure=%v", cfg.CookieSameSite, cfg.CookieSecure)
	}
	if cfg.RequestLogPrefix != "/api" || cfg.LogPreviewLen != 200 || cfg.LogLineMax != 120 {
		t.Fatalf("log defaults: %+v", cfg)
	}
	if cfg.MinIOBucket != "maintenance-attachments" {
		t.Fatalf("bucket default: %q", cfg.MinIOBucket)
	}
}

func TestLoadProductionFlips(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.RateLimitingEnabled {
		t.Fatal("rate limiting should default on in production")
	}
	if cfg.VerboseErrorLogging {
		t.Fatal("verbose error logging should default off in production")
	}
}

func TestLoadRejectsBadPort(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("HTTP_PORT", "notaport")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "HTTP_PORT") {
		t.Fatalf("expected port error, got %v", err)
	}
}

func TestLoadRejectsBadTTL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JWT_ACCESS_TTL", "fifteen minutes")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "JWT_ACCESS_TTL") {
		t.Fatalf("expected ttl error, got %v", err)
	}
}

func TestValidateJoinsAllProblems(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_ACCESS_SECRET", "short")
	t.Setenv("JWT_ACCESS_TTL", "2h")

	_, err := Load()
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{
		"DATABASE_URL is required",
		"JWT_ACCESS_SECRET must be at least 32 chars",
		"JWT_ACCESS_TTL must be between 1s and 1h",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("error %q missing %q", msg, want)
		}
	}
	if !strings.Contains(msg, "; ") {
		t.Fatalf("problems not joined: %q", msg)
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("X_BOOL", "not-a-bool")
	if getEnvBool("X_BOOL", true) != true {
		t.Fatal("unparseable bool should fall back to default")
	}
	t.Setenv("X_INT", "12x")
	if getEnvInt("X_INT", 7) != 7 {
		t.Fatal("unparseable int should fall back to default")
	}
	if getEnv("X_UNSET_KEY", "fallback") != "fallback" {
		t.Fatal("missing key should fall back to default")
	}
}
