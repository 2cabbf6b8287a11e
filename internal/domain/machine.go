package domain

import "time"

const (
	MachineStatusOperational = "operational"
	MachineStatusMaintenance = "maintenance"
	MachineStatusRetired     = "retired"
)

type Machine struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	AssetTag     string     `gorm:"uniqueIndex;size:64;not null" json:"asset_tag"`
	Name         string     `gorm:"size:255;not null" json:"name"`
	Location     string     `gorm:"size:255" json:"location"`
	SerialNumber string     `gorm:"size:128" json:"serial_number"`
	Status       string     `gorm:"size:32;not null;default:operational" json:"status"`
	InstalledAt  *time.Time `json:"installed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
