package iban

import "strings"

// rotation is how many leading characters move to the end before the checksum.
const rotation = 4

// Rearrange moves the first four characters to the end. Shorter strings are
// returned unchanged.
func Rearrange(s string) string {
	runes := []rune(s)
	if len(runes) < rotation {
		return s
	}
	return string(runes[rotation:]) + string(runes[:rotation])
}

// Numeral replaces every character with its base-36 digit value written in
// decimal: digits stay as they are and letters (either case) become 10..35.
// It reports false when s holds a character with no base-36 value.
func Numeral(s string) (string, bool) {
	var b strings.Builder
	b.Grow(len(s) * 2)
	for _, r := range s {
		d, ok := base36(r)
		if !ok {
			return "", false
		}
		if d >= 10 {
			b.WriteByte(byte('0' + d/10))
		}
		b.WriteByte(byte('0' + d%10))
	}
	return b.String(), true
}

// Mod97 reduces a decimal numeral modulo 97 one digit at a time, so numerals of
// any length are handled without big-integer arithmetic. It reports false for
// an empty numeral or one containing a non-digit.
func Mod97(numeral string) (int, bool) {
	if numeral == "" {
		return 0, false
	}
	rem := 0
	for i := 0; i < len(numeral); i++ {
		c := numeral[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		rem = (rem*10 + int(c-'0')) % 97
	}
	return rem, true
}

// checksumValid applies ISO 7064 MOD 97-10: the rearranged numeral of a valid
// IBAN leaves remainder 1.
func checksumValid(s string) bool {
	numeral, ok := Numeral(Rearrange(s))
	if !ok {
		return false
	}
	rem, ok := Mod97(numeral)
	return ok && rem == 1
}

func base36(r rune) (int, bool) {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0'), true
	case r >= 'A' && r <= 'Z':
		return int(r-'A') + 10, true
	case r >= 'a' && r <= 'z':
		return int(r-'a') + 10, true
	default:
		return 0, false
	}
}
