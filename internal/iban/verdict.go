package iban

import "unicode/utf8"

// Verdict is the outcome of evaluating one candidate string. Every failure mode
// is a false field; evaluation itself never fails.
type Verdict struct {
	IBAN            string `json:"iban" yaml:"iban"`
	IsAlphanumeric  bool   `json:"isAlphanumeric" yaml:"isAlphanumeric"`
	IsValidCountry  bool   `json:"isValidCountry" yaml:"isValidCountry"`
	IsCorrectLength bool   `json:"isCorrectLength" yaml:"isCorrectLength"`
	IsDivisibleBy97 bool   `json:"isDivisibleBy97" yaml:"isDivisibleBy97"`
}

// Valid reports whether every check passed.
func (v Verdict) Valid() bool {
	return v.IsAlphanumeric && v.IsValidCountry && v.IsCorrectLength && v.IsDivisibleBy97
}

// Reason names the first check that failed, in evaluation order.
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonTooShort         Reason = "too_short"
	ReasonNotAlphanumeric  Reason = "not_alphanumeric"
	ReasonUnknownCountry   Reason = "unknown_country"
	ReasonWrongLength      Reason = "wrong_length"
	ReasonChecksumMismatch Reason = "checksum_mismatch"
)

// Reason returns the first failed check, or ReasonNone for a valid IBAN.
func (v Verdict) Reason() Reason {
	switch {
	case utf8.RuneCountInString(v.IBAN) < minLength:
		return ReasonTooShort
	case !v.IsAlphanumeric:
		return ReasonNotAlphanumeric
	case !v.IsValidCountry:
		return ReasonUnknownCountry
	case !v.IsCorrectLength:
		return ReasonWrongLength
	case !v.IsDivisibleBy97:
		return ReasonChecksumMismatch
	default:
		return ReasonNone
	}
}
