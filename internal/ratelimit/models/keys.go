package models

import (
	"fmt"
	"strings"
)

const keyPrefix = "ibancheck:rl"

// SanitizeKeySegment replaces the ':' delimiter in caller-supplied identifiers,
// so "client:admin" becomes "client_admin" and IPv6 addresses stay one segment.
func SanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}

// NewRateLimitKey builds the bucket key for an identifier of the given kind.
func NewRateLimitKey(kind KeyKind, identifier string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, kind, SanitizeKeySegment(identifier))
}
