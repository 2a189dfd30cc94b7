package http

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Input validation constants
const (
	MaxTitleLength   = 256
	MaxMessageLength = 4096
	MaxContentLength = 50000
)

var (
	phoneRe = regexp.MustCompile(`^\+?[0-9]{8,15}$`)
	uuidRe  = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
)

// ValidPhoneNumber checks for a bare international phone number
// (digits with optional leading +, no spaces or separators).
func ValidPhoneNumber(s string) bool {
	return phoneRe.MatchString(s)
}

// ValidUUID checks the canonical UUID shape without parsing.
func ValidUUID(s string) bool {
	return uuidRe.MatchString(s)
}

// NormalizePhoneNumber strips separators WhatsApp webhooks sometimes
// include and the "whatsapp:" prefix used by some transports.
func NormalizePhoneNumber(s string) string {
	s = strings.TrimPrefix(s, "whatsapp:")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, "(", "")
	s = strings.ReplaceAll(s, ")", "")
	return s
}

// SanitizeString removes null bytes and invalid UTF-8
func SanitizeString(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")

	if !utf8.ValidString(s) {
		v := make([]rune, 0, len(s))
		for _, r := range s {
			if r != utf8.RuneError {
				v = append(v, r)
			}
		}
		s = string(v)
	}
	return s
}

// TruncateString safely truncates a string to max length
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

// ValidateLength checks if string is within bounds
func ValidateLength(s string, min, max int) bool {
	l := len(s)
	return l >= min && l <= max
}
