package domain

import "time"

const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

type MaintenanceSchedule struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	MachineID    uint      `gorm:"index;not null" json:"machine_id"`
	Machine      *Machine  `gorm:"foreignKey:MachineID;constraint:OnDelete:CASCADE" json:"machine,omitempty"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Description  string    `gorm:"size:1024" json:"description"`
	IntervalDays int       `gorm:"not null;check:interval_days > 0" json:"interval_days"`
	Priority     string    `gorm:"size:32;not null;default:medium" json:"priority"`
	NextDueAt    time.Time `gorm:"index;not null" json:"next_due_at"`
	Active       bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
