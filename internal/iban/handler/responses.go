package handler

import (
	"ibancheck/internal/iban"
	"ibancheck/internal/iban/country"
)

// ValidateResponse is the HTTP response for POST /v1/iban/validate.
type ValidateResponse struct {
	Verdicts []iban.Verdict `json:"verdicts"`
}

// CountriesResponse is the HTTP response for GET /v1/iban/countries.
type CountriesResponse struct {
	Countries []country.Country `json:"countries"`
}

func FromVerdicts(verdicts []iban.Verdict) *ValidateResponse {
	return &ValidateResponse{Verdicts: verdicts}
}

func FromCountries(countries []country.Country) *CountriesResponse {
	return &CountriesResponse{Countries: countries}
}
