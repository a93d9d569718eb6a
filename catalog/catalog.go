package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"pilgrimconnect/models"
)

// ErrInvalidHours means the temple configuration cannot produce any
// slot: closing at or before opening, or a slot duration that does not
// fit the open window. Reported, never silently ignored.
var ErrInvalidHours = errors.New("invalid temple hours configuration")

// Slot is one bookable window of a temple day.
type Slot struct {
	Start    string `json:"start"` // "HH:MM"
	End      string `json:"end"`
	Capacity int    `json:"capacity"`
}

// Slots derives the ordered slot sequence from the temple's opening
// hours, slot duration and per-slot capacity. Pure function of the
// configuration; the same for every date.
func Slots(t models.Temple) ([]Slot, error) {
	open, err := parseClock(t.OpeningTime)
	if err != nil {
		return nil, fmt.Errorf("%w: opening_time %q", ErrInvalidHours, t.OpeningTime)
	}
	closing, err := parseClock(t.ClosingTime)
	if err != nil {
		return nil, fmt.Errorf("%w: closing_time %q", ErrInvalidHours, t.ClosingTime)
	}
	if closing <= open {
		return nil, fmt.Errorf("%w: closing %s not after opening %s", ErrInvalidHours, t.ClosingTime, t.OpeningTime)
	}

	dur := t.SlotDurationMinutes
	if dur <= 0 {
		dur = 60
	}
	if dur > closing-open {
		return nil, fmt.Errorf("%w: slot duration %dm exceeds open window", ErrInvalidHours, dur)
	}
	if t.SlotCapacity <= 0 {
		return nil, fmt.Errorf("%w: slot capacity %d", ErrInvalidHours, t.SlotCapacity)
	}

	var slots []Slot
	for start := open; start+dur <= closing; start += dur {
		slots = append(slots, Slot{
			Start:    formatClock(start),
			End:      formatClock(start + dur),
			Capacity: t.SlotCapacity,
		})
	}
	return slots, nil
}

// FindSlot reports whether start is a valid slot start for the temple
// and returns its descriptor.
func FindSlot(t models.Temple, start string) (Slot, bool) {
	slots, err := Slots(t)
	if err != nil {
		return Slot{}, false
	}
	for _, s := range slots {
		if s.Start == start {
			return s, true
		}
	}
	return Slot{}, false
}

// parseClock turns "HH:MM" into minutes since midnight.
func parseClock(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("bad clock value %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("bad hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("bad minute in %q", s)
	}
	return h*60 + m, nil
}

func formatClock(min int) string {
	return fmt.Sprintf("%02d:%02d", min/60, min%60)
}
