package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// GenerateTicketNumber builds a globally unique, time-ordered ticket
// number like "DSN-20260901-4F2A9C1B". The date prefix keeps tickets
// sortable by visit day; the random suffix makes collisions
// practically impossible (and the column is unique anyway).
func GenerateTicketNumber(date string) (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	compact := strings.ReplaceAll(date, "-", "")
	return fmt.Sprintf("DSN-%s-%s", compact, strings.ToUpper(hex.EncodeToString(b))), nil
}
