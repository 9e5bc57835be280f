package iban

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumeral(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"DE89370400440532013000", "131489370400440532013000"},
		{"370400440532013000DE89", "370400440532013000131489"},
		{"0123456789", "0123456789"},
		{"AZ", "1035"},
		{"az", "1035"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := Numeral(tt.in)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNumeral_RejectsNonBase36(t *testing.T) {
	for _, s := range []string{"DE 89", "Ä", "٣", "DE-89"} {
		_, ok := Numeral(s)
		assert.False(t, ok, "input %q", s)
	}
}

func TestRearrange(t *testing.T) {
	assert.Equal(t, "370400440532013000DE89", Rearrange("DE89370400440532013000"))
	assert.Equal(t, "ABCD", Rearrange("ABCD"))
	assert.Equal(t, "ABC", Rearrange("ABC"))
	assert.Equal(t, "EFÄBCD", Rearrange("ÄBCDEF"))
}

func TestMod97(t *testing.T) {
	rem, ok := Mod97("370400440532013000131489")
	require.True(t, ok)
	assert.Equal(t, 1, rem)

	rem, ok = Mod97("97")
	require.True(t, ok)
	assert.Equal(t, 0, rem)

	rem, ok = Mod97("00001")
	require.True(t, ok)
	assert.Equal(t, 1, rem)

	_, ok = Mod97("")
	assert.False(t, ok)

	_, ok = Mod97("12a4")
	assert.False(t, ok)
}

func TestMod97_NumeralBeyond128Bits(t *testing.T) {
	// 34 letters expand to 68 digits, far past 128-bit range.
	numeral, ok := Numeral(strings.Repeat("Z", 34))
	require.True(t, ok)
	require.Len(t, numeral, 68)

	rem, ok := Mod97(numeral)
	require.True(t, ok)
	// 35 repeated 34 times: sum of 35*100^k for k<34, reduced mod 97.
	want := 0
	for range 34 {
		want = (want*100 + 35) % 97
	}
	assert.Equal(t, want, rem)
}
