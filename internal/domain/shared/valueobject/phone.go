package valueobject

import (
	"regexp"
	"strings"
)

var phonePattern = regexp.MustCompile(`^\+?\d[\d\s\-]{7,14}$`)

// IsValidPhone reports whether raw looks like a phone number:
// optional leading +, then 8 to 15 digits, spaces or dashes.
func IsValidPhone(raw string) bool {
	return phonePattern.MatchString(strings.TrimSpace(raw))
}
