package domain

import "time"

// MachineHistory is an append-only change log for machine fields.
type MachineHistory struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	MachineID   uint      `gorm:"index;not null" json:"machine_id"`
	Field       string    `gorm:"size:64;not null" json:"field"`
	OldValue    string    `gorm:"size:512" json:"old_value"`
	NewValue    string    `gorm:"size:512" json:"new_value"`
	ChangedByID uint      `gorm:"index;not null" json:"changed_by_id"`
	CreatedAt   time.Time `json:"created_at"`
}
