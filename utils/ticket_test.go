package utils

import (
	"regexp"
	"testing"
)

func TestGenerateTicketNumberFormat(t *testing.T) {
	ticket, err := GenerateTicketNumber("2026-09-02")
	if err != nil {
		t.Fatalf("GenerateTicketNumber() error: %v", err)
	}

	re := regexp.MustCompile(`^DSN-20260902-[0-9A-F]{8}$`)
	if !re.MatchString(ticket) {
		t.Errorf("ticket %q does not match DSN-YYYYMMDD-XXXXXXXX", ticket)
	}
}

func TestGenerateTicketNumberUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		ticket, err := GenerateTicketNumber("2026-09-02")
		if err != nil {
			t.Fatalf("GenerateTicketNumber() error: %v", err)
		}
		if seen[ticket] {
			t.Fatalf("duplicate ticket %q", ticket)
		}
		seen[ticket] = true
	}
}
