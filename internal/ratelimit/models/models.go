package models

import (
	"time"
)

// RateLimitResult represents the outcome of a rate limit check.
type RateLimitResult struct {
	Allowed    bool      `json:"allowed"`
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	RetryAfter int       `json:"retry_after,omitempty"` // seconds, only set when not allowed
}

// KeyKind names what a rate limit bucket is keyed on.
type KeyKind string

const (
	KeyKindIP     KeyKind = "ip"
	KeyKindClient KeyKind = "client"
)

// RetryAfterSeconds rounds the wait until resetAt up to whole seconds, with a
// floor of one so clients never retry immediately.
func RetryAfterSeconds(now, resetAt time.Time) int {
	d := resetAt.Sub(now)
	if d <= 0 {
		return 1
	}
	secs := int((d + time.Second - 1) / time.Second)
	return max(secs, 1)
}
