package models

import "time"

// SlotLedger is the authoritative occupancy row for one
// (temple, date, slot_start). reserved_count only changes through
// ledger.Reserve and ledger.Release.
type SlotLedger struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	TempleID      uint      `gorm:"uniqueIndex:idx_slot_key;not null" json:"temple_id"`
	Date          string    `gorm:"size:10;uniqueIndex:idx_slot_key;not null" json:"date"`
	SlotStart     string    `gorm:"size:5;uniqueIndex:idx_slot_key;not null" json:"slot_start"`
	ReservedCount int       `gorm:"not null;default:0" json:"reserved_count"`
	Capacity      int       `gorm:"not null" json:"capacity"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ReservationToken is the handle returned by a successful reserve.
// Releasing marks it used; a second release fails instead of crediting
// the slot twice.
type ReservationToken struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"`
	LedgerID   uint       `gorm:"index;not null" json:"ledger_id"`
	PartySize  int        `gorm:"not null" json:"party_size"`
	ReleasedAt *time.Time `json:"released_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
