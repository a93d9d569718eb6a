package models

import "time"

// Pilgrim is the registry record for a visitor. A booking references a
// pilgrim; it never copies these fields except for display.
type Pilgrim struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	UserID                uint      `gorm:"index" json:"user_id"` // owning account, 0 for admin-registered pilgrims
	FullName              string    `gorm:"size:200;not null" json:"full_name"`
	Phone                 string    `gorm:"size:20;not null" json:"phone"`
	Email                 string    `gorm:"size:200" json:"email,omitempty"`
	Age                   int       `json:"age"`
	Gender                string    `gorm:"size:10" json:"gender"`
	IDType                string    `gorm:"size:30;default:'aadhaar'" json:"id_type"`
	IDNumber              string    `gorm:"size:50" json:"id_number"`
	PriorityCategory      string    `gorm:"size:30;default:'none'" json:"priority_category"` // none, elderly, differently_abled
	EmergencyContactName  string    `gorm:"size:200" json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone string    `gorm:"size:20" json:"emergency_contact_phone,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}
