package services

import (
	"fmt"
	"math/rand"
	"net/mail"
	"strings"
)

// NormEmail lowercases/trims an address and validates it. Accounts
// require an email, so empty is not ok here.
func NormEmail(s string) (string, bool) {
	e := strings.TrimSpace(strings.ToLower(s))
	if e == "" {
		return "", false
	}
	_, err := mail.ParseAddress(e)
	return e, err == nil
}

// GenerateCheckinCode creates a kiosk code like CHK-1A2B3C4D (32 bits of
// entropy, uppercase hex). Uniqueness is enforced by the DB index; the
// caller retries on conflict.
func GenerateCheckinCode() string {
	return fmt.Sprintf("CHK-%08X", rand.Uint32())
}
