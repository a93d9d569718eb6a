package events

import (
	"encoding/json"
	"fmt"
)

// Routing keys published on the booking exchange.
const (
	RKBookingConfirmed = "booking.confirmed"
	RKBookingCancelled = "booking.cancelled"
)

// BookingConfirmed carries enough for the dispatcher to compose a
// message without calling back into the service.
type BookingConfirmed struct {
	BookingID    uint   `json:"booking_id"`
	TicketNumber string `json:"ticket_number"`
	PilgrimName  string `json:"pilgrim_name"`
	PilgrimPhone string `json:"pilgrim_phone"`
	TempleName   string `json:"temple_name"`
	Date         string `json:"date"`
	Slot         string `json:"slot"`
	PartySize    int    `json:"party_size"`
}

type BookingCancelled struct {
	BookingID    uint   `json:"booking_id"`
	TicketNumber string `json:"ticket_number,omitempty"`
	PilgrimPhone string `json:"pilgrim_phone,omitempty"`
	Reason       string `json:"reason,omitempty"` // "user", "sweep"
}

func Unmarshal[T any](b []byte) (T, error) {
	var t T
	if err := json.Unmarshal(b, &t); err != nil {
		var zero T
		return zero, fmt.Errorf("decode payload: %w", err)
	}
	return t, nil
}
