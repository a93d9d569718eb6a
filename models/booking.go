package models

import "time"

// Booking statuses. A booking is created as pending only after the
// ledger reservation succeeded, and becomes confirmed once a ticket
// number has been issued. Cancelled, completed and no_show are terminal.
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
	BookingCheckedIn = "checked_in"
	BookingCompleted = "completed"
	BookingNoShow    = "no_show"
)

type Booking struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"index;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	PilgrimID uint    `gorm:"index" json:"pilgrim_id"`
	Pilgrim   Pilgrim `gorm:"foreignKey:PilgrimID" json:"pilgrim"`

	TempleID uint   `gorm:"index;not null" json:"temple_id"`
	Temple   Temple `gorm:"foreignKey:TempleID" json:"temple"`

	Date      string `gorm:"size:10;index;not null" json:"date"`      // "2006-01-02"
	SlotStart string `gorm:"size:5;index;not null" json:"slot_start"` // "HH:MM"
	PartySize int    `gorm:"not null" json:"party_size"`

	PriorityCategory string `gorm:"size:30;default:'none'" json:"priority_category"`
	SpecialNeeds     string `gorm:"size:200;default:'None'" json:"special_needs"`

	// Denormalized for ticket display only; Pilgrim stays authoritative.
	PilgrimName string `gorm:"size:200" json:"pilgrim_name"`

	Status string `gorm:"type:varchar(20);default:'pending';index" json:"status"`

	// NULL until confirmation so coexisting pending rows never collide
	// on the unique index.
	TicketNumber *string `gorm:"size:40;uniqueIndex" json:"ticket_number,omitempty"`

	// Reservation token backing this booking's seats in the ledger.
	TokenID string `gorm:"size:36;index" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
