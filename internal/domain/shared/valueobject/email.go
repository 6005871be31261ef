package valueobject

import (
	"regexp"
	"strings"
)

// emailPattern only checks the overall shape
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NormalizeEmail lower-cases and trims an email address
func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// IsValidEmail reports whether raw looks like an email address
func IsValidEmail(raw string) bool {
	email := NormalizeEmail(raw)
	return len(email) <= 254 && emailPattern.MatchString(email)
}
