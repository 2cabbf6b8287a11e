package domain

import "time"

const (
	RecordStatusPending   = "pending"
	RecordStatusCompleted = "completed"
)

type MaintenanceRecord struct {
	ID            uint                 `gorm:"primaryKey" json:"id"`
	MachineID     uint                 `gorm:"index;not null" json:"machine_id"`
	Machine       *Machine             `gorm:"foreignKey:MachineID;constraint:OnDelete:CASCADE" json:"machine,omitempty"`
	ScheduleID    *uint                `gorm:"index" json:"schedule_id,omitempty"`
	Schedule      *MaintenanceSchedule `gorm:"foreignKey:ScheduleID" json:"schedule,omitempty"`
	PerformedByID uint                 `gorm:"index;not null" json:"performed_by_id"`
	PerformedBy   *User                `gorm:"foreignKey:PerformedByID" json:"performed_by,omitempty"`
	PerformedAt   time.Time            `gorm:"index;not null" json:"performed_at"`
	Description   string               `gorm:"size:2048;not null" json:"description"`
	Cost          float64              `gorm:"not null;default:0;check:cost >= 0" json:"cost"`
	Status        string               `gorm:"size:32;not null;default:completed" json:"status"`
	AttachmentKey string               `gorm:"size:512" json:"attachment_key,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}
