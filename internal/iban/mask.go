package iban

import "strings"

// Mask hides the middle of a candidate for logs and audit records, keeping the
// country code, check digits and the last four characters.
func Mask(s string) string {
	runes := []rune(s)
	switch {
	case len(runes) <= minLength:
		return strings.Repeat("*", len(runes))
	case len(runes) <= 2*rotation:
		return string(runes[:minLength]) + strings.Repeat("*", len(runes)-minLength)
	}
	tail := len(runes) - rotation
	return string(runes[:rotation]) + strings.Repeat("*", tail-rotation) + string(runes[tail:])
}
