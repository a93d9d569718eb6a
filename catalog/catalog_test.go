package catalog

import (
	"errors"
	"testing"

	"pilgrimconnect/models"
)

func TestSlotsGeneratesFullDay(t *testing.T) {
	temple := models.Temple{
		Name:                "Test Temple",
		OpeningTime:         "06:00",
		ClosingTime:         "10:00",
		SlotDurationMinutes: 60,
		SlotCapacity:        50,
	}

	slots, err := Slots(temple)
	if err != nil {
		t.Fatalf("Slots() error: %v", err)
	}

	if got, want := len(slots), 4; got != want {
		t.Fatalf("len(slots) = %d, want %d", got, want)
	}
	if got, want := slots[0].Start, "06:00"; got != want {
		t.Errorf("first start = %q, want %q", got, want)
	}
	if got, want := slots[3].End, "10:00"; got != want {
		t.Errorf("last end = %q, want %q", got, want)
	}
	for _, s := range slots {
		if s.Capacity != 50 {
			t.Errorf("slot %s capacity = %d, want 50", s.Start, s.Capacity)
		}
	}
}

func TestSlotsDropsPartialTrailingWindow(t *testing.T) {
	temple := models.Temple{
		OpeningTime:         "05:30",
		ClosingTime:         "21:00",
		SlotDurationMinutes: 60,
		SlotCapacity:        300,
	}

	slots, err := Slots(temple)
	if err != nil {
		t.Fatalf("Slots() error: %v", err)
	}

	// 05:30..21:00 is 15h30m; only 15 full hours fit.
	if got, want := len(slots), 15; got != want {
		t.Fatalf("len(slots) = %d, want %d", got, want)
	}
	if got, want := slots[len(slots)-1].End, "20:30"; got != want {
		t.Errorf("last end = %q, want %q", got, want)
	}
}

func TestSlotsDefaultsDurationToSixtyMinutes(t *testing.T) {
	temple := models.Temple{
		OpeningTime:  "08:00",
		ClosingTime:  "11:00",
		SlotCapacity: 10,
	}

	slots, err := Slots(temple)
	if err != nil {
		t.Fatalf("Slots() error: %v", err)
	}
	if got, want := len(slots), 3; got != want {
		t.Errorf("len(slots) = %d, want %d", got, want)
	}
}

func TestSlotsRejectsBadConfiguration(t *testing.T) {
	cases := []struct {
		name   string
		temple models.Temple
	}{
		{"closing before opening", models.Temple{OpeningTime: "10:00", ClosingTime: "06:00", SlotCapacity: 10}},
		{"closing equals opening", models.Temple{OpeningTime: "10:00", ClosingTime: "10:00", SlotCapacity: 10}},
		{"unparseable opening", models.Temple{OpeningTime: "dawn", ClosingTime: "10:00", SlotCapacity: 10}},
		{"unparseable closing", models.Temple{OpeningTime: "06:00", ClosingTime: "25:99", SlotCapacity: 10}},
		{"duration exceeds window", models.Temple{OpeningTime: "06:00", ClosingTime: "07:00", SlotDurationMinutes: 90, SlotCapacity: 10}},
		{"zero capacity", models.Temple{OpeningTime: "06:00", ClosingTime: "10:00", SlotCapacity: 0}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Slots(tc.temple); !errors.Is(err, ErrInvalidHours) {
				t.Errorf("Slots() error = %v, want ErrInvalidHours", err)
			}
		})
	}
}

func TestFindSlot(t *testing.T) {
	temple := models.Temple{
		OpeningTime:         "06:00",
		ClosingTime:         "09:00",
		SlotDurationMinutes: 60,
		SlotCapacity:        20,
	}

	s, ok := FindSlot(temple, "07:00")
	if !ok {
		t.Fatal("FindSlot(07:00) = false, want true")
	}
	if got, want := s.End, "08:00"; got != want {
		t.Errorf("slot end = %q, want %q", got, want)
	}

	if _, ok := FindSlot(temple, "07:30"); ok {
		t.Error("FindSlot(07:30) = true, want false for off-grid start")
	}
	if _, ok := FindSlot(temple, "09:00"); ok {
		t.Error("FindSlot(09:00) = true, want false at closing time")
	}
}
