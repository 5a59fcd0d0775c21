package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizePayID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Alice", "alice"},
		{"  Bob.Pay \t", "bob.pay"},
		{"already-clean", "already-clean"},
		{"", ""},
	}
	for _, tt := range tests {
		got := SanitizePayID(tt.in)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, got, SanitizePayID(got), "sanitize must be idempotent")
	}
}

func TestIsValidPayID(t *testing.T) {
	tests := []struct {
		payID string
		want  bool
	}{
		{"abc", true},
		{"alice.pay_01-x", true},
		{"ab", false},
		{"", false},
		{"Has.Upper", false},
		{"with space", false},
		{"emoji🙂", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsValidPayID(tt.payID), "pay id %q", tt.payID)
	}
}
