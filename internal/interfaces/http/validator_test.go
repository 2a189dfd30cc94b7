package http

import "testing"

func TestValidPhoneNumber(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"+5491111111111", true},
		{"5491111111111", true},
		{"12345678", true},
		{"1234567", false},
		{"+54 911 1111", false},
		{"abc", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidPhoneNumber(tt.in); got != tt.want {
			t.Errorf("ValidPhoneNumber(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNormalizePhoneNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"whatsapp:+549 11 1111-1111", "+5491111111111"},
		{"(54) 911", "54911"},
		{"+5491111111111", "+5491111111111"},
	}
	for _, tt := range tests {
		if got := NormalizePhoneNumber(tt.in); got != tt.want {
			t.Errorf("NormalizePhoneNumber(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeString_RemovesNullBytes(t *testing.T) {
	if got := SanitizeString("ho\x00la"); got != "hola" {
		t.Errorf("SanitizeString() = %q, want %q", got, "hola")
	}
}

func TestTruncateString(t *testing.T) {
	if got := TruncateString("abcdef", 3); got != "abc" {
		t.Errorf("TruncateString() = %q, want %q", got, "abc")
	}
	if got := TruncateString("ab", 3); got != "ab" {
		t.Errorf("TruncateString() = %q, want %q", got, "ab")
	}
}

func TestValidUUID(t *testing.T) {
	if !ValidUUID("123e4567-e89b-12d3-a456-426614174000") {
		t.Error("canonical UUID rejected")
	}
	if ValidUUID("not-a-uuid") {
		t.Error("garbage accepted as UUID")
	}
}
