package database

import (
	"fmt"
	"io"
	"log/slog"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/domain"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestPromoteBootstrapAdmin(t *testing.T) {
	db := openTestDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	// No account yet: not an error, nothing to promote.
	if err := PromoteBootstrapAdmin(db, logger, "boss@example.com"); err != nil {
		t.Fatalf("missing account should not fail: %v", err)
	}

	u := domain.User{
		Email:        "boss@example.com",
		Name:         "Boss",
		PasswordHash: "x",
		Role:         domain.RoleTechnician,
		Status:       domain.UserStatusActive,
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	if err := PromoteBootstrapAdmin(db, logger, "  Boss@Example.com "); err != nil {
		t.Fatalf("promote: %v", err)
	}
	var got domain.User
	if err := db.First(&got, u.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if got.Role != domain.RoleAdmin {
		t.Fatalf("role = %q, want admin", got.Role)
	}

	// Idempotent on an already-promoted account.
	if err := PromoteBootstrapAdmin(db, logger, "boss@example.com"); err != nil {
		t.Fatalf("repeat promote: %v", err)
	}
}

func TestPromoteBootstrapAdminEmptyEmailIsNoop(t *testing.T) {
	db := openTestDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := PromoteBootstrapAdmin(db, logger, "   "); err != nil {
		t.Fatalf("empty email should be a no-op: %v", err)
	}
}
