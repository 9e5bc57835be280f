package handler

import (
	dErrors "ibancheck/pkg/domain-errors"
)

// ValidateRequest is the HTTP request body for POST /v1/iban/validate.
type ValidateRequest struct {
	IBANs []string `json:"ibans"`
}

// Validate implements the Validatable interface for httputil.DecodeAndPrepare.
// Candidates are not trimmed or re-cased; the verdict reflects the input as sent.
func (r *ValidateRequest) Validate() error {
	if r == nil || r.IBANs == nil {
		return dErrors.New(dErrors.CodeValidation, "ibans is required")
	}
	return nil
}
