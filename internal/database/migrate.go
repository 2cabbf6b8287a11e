package database

import (
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/domain"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Machine{},
		&domain.MaintenanceSchedule{},
		&domain.MaintenanceRecord{},
		&domain.MachineHistory{},
		&domain.Session{},
	)
}
