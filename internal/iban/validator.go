// Package iban evaluates candidate International Bank Account Numbers against
// ISO 13616: character set, country code, country-specific length and the
// ISO 7064 MOD 97-10 checksum.
//
// Evaluation is a pure function of the input and the read-only country
// registry. Verdicts for different candidates share no state and can be
// computed concurrently.
package iban

import (
	"errors"
	"unicode"

	"ibancheck/internal/iban/country"
)

// minLength is the shortest input from which a country code can be taken.
const minLength = 2

// ErrNoCandidates is returned by EvaluateAll for an empty batch.
var ErrNoCandidates = errors.New("iban: no candidates to evaluate")

// Registry resolves a country code to its expected IBAN length.
type Registry interface {
	LookupLength(code string) (int, bool)
}

// Validator evaluates candidates against a Registry.
type Validator struct {
	registry Registry
}

// New returns a Validator backed by registry.
func New(registry Registry) *Validator {
	return &Validator{registry: registry}
}

var defaultValidator = New(country.Default())

// Default returns the Validator backed by the built-in country registry.
func Default() *Validator {
	return defaultValidator
}

// Evaluate runs every check on candidate. The checks run in order and a
// structural failure (too short, non-alphanumeric) leaves the later fields
// false. Country, length and checksum are independent of one another.
func (v *Validator) Evaluate(candidate string) Verdict {
	verdict := Verdict{IBAN: candidate}

	runes := []rune(candidate)
	if len(runes) < minLength {
		return verdict
	}
	if !isAlphanumeric(runes) {
		return verdict
	}
	verdict.IsAlphanumeric = true

	expected, ok := v.registry.LookupLength(string(runes[:minLength]))
	verdict.IsValidCountry = ok
	verdict.IsCorrectLength = ok && expected == len(runes)

	verdict.IsDivisibleBy97 = checksumValid(candidate)
	return verdict
}

// EvaluateAll evaluates each candidate independently and returns the verdicts
// in input order.
func (v *Validator) EvaluateAll(candidates []string) ([]Verdict, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}
	verdicts := make([]Verdict, len(candidates))
	for i, c := range candidates {
		verdicts[i] = v.Evaluate(c)
	}
	return verdicts, nil
}

// Evaluate uses the default validator.
func Evaluate(candidate string) Verdict {
	return defaultValidator.Evaluate(candidate)
}

// EvaluateAll uses the default validator.
func EvaluateAll(candidates []string) ([]Verdict, error) {
	return defaultValidator.EvaluateAll(candidates)
}

// isAlphanumeric accepts any Unicode letter or number, not only ASCII.
func isAlphanumeric(runes []rune) bool {
	for _, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsNumber(r) {
			return false
		}
	}
	return true
}
