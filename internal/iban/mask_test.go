package iban

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMask(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"DE89370400440532013000", "DE89**************3000"},
		{"NO9386011117947", "NO93*******7947"},
		{"DE893704", "DE******"},
		{"DE", "**"},
		{"", ""},
		{"ÄÖÜ", "ÄÖ*"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Mask(tt.in), "input %q", tt.in)
	}
}
