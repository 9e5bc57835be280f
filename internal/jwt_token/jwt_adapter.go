package jwttoken

import (
	authmw "ibancheck/pkg/platform/middleware/auth"
)

// Validator adapts JWTService to the bearer middleware.
type Validator struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *Validator {
	return &Validator{service: service}
}

func (v *Validator) ValidateToken(raw string) (*authmw.JWTClaims, error) {
	claims, err := v.service.ValidateToken(raw)
	if err != nil {
		return nil, err
	}
	return &authmw.JWTClaims{ClientID: claims.ClientID, Subject: claims.Subject, JTI: claims.ID}, nil
}
