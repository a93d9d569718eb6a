package models

import (
	"time"

	"gorm.io/gorm"
)

type Temple struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	Name                string         `gorm:"size:200;not null" json:"name"`
	City                string         `gorm:"size:100" json:"city"`
	State               string         `gorm:"size:100" json:"state"`
	OpeningTime         string         `gorm:"size:5;not null" json:"opening_time"` // "04:00"
	ClosingTime         string         `gorm:"size:5;not null" json:"closing_time"` // "23:00"
	SlotDurationMinutes int            `gorm:"default:60" json:"slot_duration_minutes"`
	SlotCapacity        int            `gorm:"not null" json:"slot_capacity"`
	ImageURL            string         `json:"image_url,omitempty"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}
