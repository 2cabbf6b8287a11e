package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/config"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/database"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/domain"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/http/handler"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/http/middleware"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/http/router"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/repository"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/security"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/service"
)

const (
	testAdminEmail    = "admin@example.com"
	testAdminPassword = "admin-pass-123"
	testTechEmail     = "tech@example.com"
	testTechPassword  = "tech-pass-123"
)

// fakeStorage keeps attachments in memory so integration tests never
// need a MinIO instance.
type fakeStorage struct {
	objects map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (f *fakeStorage) Upload(_ context.Context, recordID uint, file io.Reader, fileSize int64, contentType string) (string, error) {
	if fileSize > 10*1024*1024 {
		return "", service.ErrAttachmentTooBig
	}
	switch contentType {
	case "application/pdf", "image/jpeg", "image/png":
	default:
		return "", service.ErrInvalidFileType
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("maintenance-records/record-%d/%d", recordID, len(f.objects))
	f.objects[key] = data
	return key, nil
}

func (f *fakeStorage) Delete(_ context.Context, objectKey string) error {
	delete(f.objects, objectKey)
	return nil
}

func (f *fakeStorage) PresignedURL(_ context.Context, objectKey string) (string, error) {
	if _, ok := f.objects[objectKey]; !ok {
		return "", fmt.Errorf("no such object %q", objectKey)
	}
	return "https://storage.local/" + objectKey, nil
}

type testEnv struct {
	baseURL string
	client  *http.Client
	db      *gorm.DB
	storage *fakeStorage
}

func newTestServer(t *testing.T, withLimiter *middleware.RateLimiter) (*testEnv, func()) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		Env:              "test",
		HTTPPort:         "0",
		JWTAccessTTL:     15 * time.Minute,
		SessionTTL:       24 * time.Hour,
		RequestLogPrefix: "/api",
		LogPreviewLen:    200,
		LogLineMax:       120,
	}

	reporter := database.NewErrorReporter(logger, true)
	users := repository.NewUserRepository(db)
	sessions := repository.NewSessionRepository(db)
	machines := repository.NewMachineRepository(db)
	schedules := repository.NewScheduleRepository(db)
	records := repository.NewRecordRepository(db)

	jwtMgr := security.NewJWTManager("test-iss", "test-aud", "0123456789abcdef0123456789abcdef")
	cookies := security.NewCookieManager("", false, "lax")
	storage := newFakeStorage()

	sessionSvc := service.NewSessionService(users, sessions, jwtMgr, "test-pepper-0123456789", cfg.JWTAccessTTL, cfg.SessionTTL)
	userSvc := service.NewUserService(users, reporter)
	machineSvc := service.NewMachineService(machines, reporter)
	scheduleSvc := service.NewScheduleService(schedules, machines, reporter)
	recordSvc := service.NewRecordService(records, machines, scheduleSvc, storage, reporter, logger)

	h := router.New(router.Deps{
		Config:    cfg,
		Logger:    logger,
		Auth:      middleware.NewAuth(jwtMgr),
		Limiter:   withLimiter,
		Health:    handler.NewHealthHandler(db),
		AuthH:     handler.NewAuthHandler(sessionSvc, cookies, cfg.JWTAccessTTL, cfg.SessionTTL),
		Machines:  handler.NewMachineHandler(machineSvc),
		Schedules: handler.NewScheduleHandler(scheduleSvc),
		Records:   handler.NewRecordHandler(recordSvc),
		Users:     handler.NewUserHandler(userSvc),
	})

	seedUser(t, db, testAdminEmail, testAdminPassword, domain.RoleAdmin)
	seedUser(t, db, testTechEmail, testTechPassword, domain.RoleTechnician)

	srv := httptest.NewServer(h)
	jar := newCookieJar(t)
	env := &testEnv{
		baseURL: srv.URL,
		client:  &http.Client{Jar: jar},
		db:      db,
		storage: storage,
	}
	return env, srv.Close
}

func newCookieJar(t *testing.T) http.CookieJar {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("new cookie jar: %v", err)
	}
	return jar
}

func seedUser(t *testing.T, db *gorm.DB, email, password, role string) {
	t.Helper()
	hash, err := security.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := domain.User{
		Email:        email,
		Name:         "Test " + role,
		PasswordHash: hash,
		Role:         role,
		Status:       domain.UserStatusActive,
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, headers map[string]string) (*http.Response, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("decode envelope: %v body=%q", err, raw)
		}
	}
	return resp, env
}

func doRawText(t *testing.T, client *http.Client, method, url string, body string, headers map[string]string) (*http.Response, string) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	return resp, string(raw)
}

func login(t *testing.T, env *testEnv, email, password string) {
	t.Helper()
	resp, body := doJSON(t, env.client, http.MethodPost, env.baseURL+"/api/v1/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d (%v)", email, resp.StatusCode, body.Error)
	}
}

func mustDecode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode data: %v raw=%q", err, raw)
	}
	return v
}
