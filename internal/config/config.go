package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/validate"
)

type Config struct {
	Env      string
	HTTPPort string

	DatabaseURL string

	JWTIssuer          string
	JWTAudience        string
	JWTAccessSecret    string
	JWTAccessTTL       time.Duration
	SessionTTL         time.Duration
	RefreshTokenPepper string
	CookieDomain       string
	CookieSecure       bool
	CookieSameSite     string

	// Rate limiting only runs when explicitly enabled; there is no
	// implicit environment sniffing inside the limiter itself.
	RateLimitingEnabled bool
	RateLimitWindow     time.Duration
	RateLimitMax        int
	RedisURL            string

	// VerboseErrorLogging gates full database error detail in logs.
	VerboseErrorLogging bool

	LogLevel         string
	LogFormat        string
	RequestLogPrefix string
	LogPreviewLen    int
	LogLineMax       int

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool

	BootstrapAdminEmail string
}

func Load() (*Config, error) {
	env := getEnv("APP_ENV", "development")
	port, err := validate.Port(os.Getenv("HTTP_PORT"))
	if err != nil {
		return nil, fmt.Errorf("parse HTTP_PORT: %w", err)
	}
	cfg := &Config{
		Env:                 env,
		HTTPPort:            strconv.Itoa(port),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		JWTIssuer:           getEnv("JWT_ISSUER", "maintenance-service"),
		JWTAudience:         getEnv("JWT_AUDIENCE", "maintenance-service-api"),
		JWTAccessSecret:     os.Getenv("JWT_ACCESS_SECRET"),
		RefreshTokenPepper:  os.Getenv("REFRESH_TOKEN_PEPPER"),
		CookieDomain:        os.Getenv("COOKIE_DOMAIN"),
		CookieSecure:        getEnvBool("COOKIE_SECURE", true),
		CookieSameSite:      strings.ToLower(getEnv("COOKIE_SAMESITE", "lax")),
		RateLimitingEnabled: getEnvBool("RATE_LIMITING_ENABLED", env == "production"),
		RateLimitMax:        getEnvInt("RATE_LIMIT_MAX_REQUESTS", 100),
		RedisURL:            os.Getenv("REDIS_URL"),
		VerboseErrorLogging: getEnvBool("VERBOSE_ERROR_LOGGING", env != "production"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           strings.ToLower(getEnv("LOG_FORMAT", "json")),
		RequestLogPrefix:    getEnv("REQUEST_LOG_PREFIX", "/api"),
		LogPreviewLen:       getEnvInt("LOG_PREVIEW_LEN", 200),
		LogLineMax:          getEnvInt("LOG_LINE_MAX", 120),
		MinIOEndpoint:       os.Getenv("MINIO_ENDPOINT"),
		MinIOAccessKey:      os.Getenv("MINIO_ACCESS_KEY"),
		MinIOSecretKey:      os.Getenv("MINIO_SECRET_KEY"),
		MinIOBucket:         getEnv("MINIO_BUCKET", "maintenance-attachments"),
		MinIOUseSSL:         getEnvBool("MINIO_USE_SSL", false),
		BootstrapAdminEmail: strings.TrimSpace(strings.ToLower(os.Getenv("BOOTSTRAP_ADMIN_EMAIL"))),
	}

	accessTTL, err := time.ParseDuration(getEnv("JWT_ACCESS_TTL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("parse JWT_ACCESS_TTL: %w", err)
	}
	cfg.JWTAccessTTL = accessTTL

	sessionTTL, err := time.ParseDuration(getEnv("SESSION_TTL", "168h"))
	if err != nil {
		return nil, fmt.Errorf("parse SESSION_TTL: %w", err)
	}
	cfg.SessionTTL = sessionTTL

	window, err := time.ParseDuration(getEnv("RATE_LIMIT_WINDOW", "1m"))
	if err != nil {
		return nil, fmt.Errorf("parse RATE_LIMIT_WINDOW: %w", err)
	}
	cfg.RateLimitWindow = window

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string
	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}
	if len(c.JWTAccessSecret) < 32 {
		errs = append(errs, "JWT_ACCESS_SECRET must be at least 32 chars")
	}
	if len(c.RefreshTokenPepper) < 16 {
		errs = append(errs, "REFRESH_TOKEN_PEPPER must be at least 16 chars")
	}
	if c.JWTAccessTTL <= 0 || c.JWTAccessTTL > time.Hour {
		errs = append(errs, "JWT_ACCESS_TTL must be between 1s and 1h")
	}
	if c.SessionTTL <= 0 || c.SessionTTL > (30*24*time.Hour) {
		errs = append(errs, "SESSION_TTL must be between 1s and 30d")
	}
	if c.RateLimitWindow <= 0 {
		errs = append(errs, "RATE_LIMIT_WINDOW must be > 0")
	}
	if c.RateLimitMax <= 0 {
		errs = append(errs, "RATE_LIMIT_MAX_REQUESTS must be > 0")
	}
	if c.LogPreviewLen <= 0 {
		errs = append(errs, "LOG_PREVIEW_LEN must be > 0")
	}
	if c.LogLineMax <= 0 {
		errs = append(errs, "LOG_LINE_MAX must be > 0")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
