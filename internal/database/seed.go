package database

import (
	"errors"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/domain"
)

// PromoteBootstrapAdmin upgrades the configured bootstrap account to admin.
// A missing account is not an error; the promotion simply waits for the
// user to register.
func PromoteBootstrapAdmin(db *gorm.DB, logger *slog.Logger, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil
	}
	var user domain.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Info("bootstrap admin not registered yet", "email", email)
			return nil
		}
		return err
	}
	if user.Role == domain.RoleAdmin {
		return nil
	}
	if err := db.Model(&user).Update("role", domain.RoleAdmin).Error; err != nil {
		return err
	}
	logger.Info("bootstrap admin promoted", "user_id", user.ID)
	return nil
}
