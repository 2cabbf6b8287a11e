package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/database"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/domain"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/repository"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/security"
)

type fixture struct {
	db        *gorm.DB
	reporter  *database.ErrorReporter
	users     repository.UserRepository
	sessions  repository.SessionRepository
	machines  repository.MachineRepository
	schedules repository.ScheduleRepository
	records   repository.RecordRepository
}

func newFixture(t *testing.T) *fixture {
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
	return &fixture{
		db:        db,
		reporter:  database.NewErrorReporter(logger, true),
		users:     repository.NewUserRepository(db),
		sessions:  repository.NewSessionRepository(db),
		machines:  repository.NewMachineRepository(db),
		schedules: repository.NewScheduleRepository(db),
		records:   repository.NewRecordRepository(db),
	}
}

func (f *fixture) createUser(t *testing.T, email, password, role, status string) *domain.User {
	t.Helper()
	hash, err := security.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &domain.User{Email: email, Name: "User", PasswordHash: hash, Role: role, Status: status}
	if err := f.db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func (f *fixture) createMachine(t *testing.T, assetTag string) *domain.Machine {
	t.Helper()
	m := &domain.Machine{AssetTag: assetTag, Name: "Machine " + assetTag, Status: domain.MachineStatusOperational}
	if err := f.db.Create(m).Error; err != nil {
		t.Fatalf("create machine: %v", err)
	}
	return m
}

func (f *fixture) newMachineService() *MachineService {
	return NewMachineService(f.machines, f.reporter)
}

func (f *fixture) newScheduleService() *ScheduleService {
	return NewScheduleService(f.schedules, f.machines, f.reporter)
}

func securityManager() *security.JWTManager {
	return security.NewJWTManager("test-iss", "test-aud", "0123456789abcdef0123456789abcdef")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ctxb() context.Context { return context.Background() }

func fixedNow() time.Time {
	return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
}
