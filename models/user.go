package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	FullName      string         `gorm:"not null" json:"full_name"`
	Email         string         `gorm:"uniqueIndex;not null" json:"email"`
	Password      string         `gorm:"not null" json:"-"` // bcrypt hash
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	Blocked       bool           `gorm:"default:false" json:"blocked"`
	Deleted       bool           `gorm:"default:false" json:"deleted"`
	Bookings      []Booking      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"bookings,omitempty"`
	Pilgrims      []Pilgrim      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"pilgrims,omitempty"`
	BookingsCount int64          `gorm:"-" json:"bookings_count,omitempty"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

type RefreshToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Token     string    `gorm:"size:64;uniqueIndex;not null" json:"-"` // sha256 hex of the raw token
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
