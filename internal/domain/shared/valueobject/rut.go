package valueobject

import (
	"fmt"
	"regexp"
	"strings"
)

var rutPattern = regexp.MustCompile(`^\d{1,2}\.?\d{3}\.?\d{3}-[\dkK]$`)

// RUT is a Chilean tax identifier in canonical form (no dots, upper-case K).
type RUT struct {
	value string
}

// ParseRUT validates the format and returns the canonical RUT.
// Accepted input: 12.345.678-9, 12345678-9, 1.234.567-k.
func ParseRUT(raw string) (RUT, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return RUT{}, fmt.Errorf("RUT is required")
	}
	if !rutPattern.MatchString(raw) {
		return RUT{}, fmt.Errorf("invalid RUT format, expected e.g. 12.345.678-9")
	}
	canonical := strings.ToUpper(strings.ReplaceAll(raw, ".", ""))
	return RUT{value: canonical}, nil
}

// IsValidRUTFormat reports whether raw matches the accepted RUT layouts
func IsValidRUTFormat(raw string) bool {
	return rutPattern.MatchString(strings.TrimSpace(raw))
}

// String returns the canonical representation
func (r RUT) String() string {
	return r.value
}

// Formatted returns the dotted representation, e.g. 12.345.678-9
func (r RUT) Formatted() string {
	if r.value == "" {
		return ""
	}
	body, dv, _ := strings.Cut(r.value, "-")
	var sb strings.Builder
	lead := len(body) % 3
	if lead > 0 {
		sb.WriteString(body[:lead])
	}
	for i := lead; i < len(body); i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(body[i : i+3])
	}
	return sb.String() + "-" + dv
}

// IsZero reports whether the RUT is empty
func (r RUT) IsZero() bool {
	return r.value == ""
}
