package audit

import (
	"time"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with regulatory significance, such as
	// the outcome of a payment identifier check.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to security monitoring and forensics.
	// Examples: rate limit violations.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers events useful for debugging and operational visibility.
	CategoryOperations EventCategory = "operations"
)

// Severity levels for security events.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        string        `json:"id"`
	Category  EventCategory `json:"category"`
	Timestamp time.Time     `json:"timestamp"`
	// Subject is the entity acting: an API client id, or the client IP for
	// anonymous callers.
	Subject   string   `json:"subject"`
	Action    string   `json:"action"`
	Decision  string   `json:"decision,omitempty"`
	Reason    string   `json:"reason,omitempty"`
	RequestID string   `json:"request_id,omitempty"`
	IP        string   `json:"ip,omitempty"`
	Severity  Severity `json:"severity,omitempty"`
	// MaskedIBAN keeps country and check digits readable and hides the
	// account part.
	MaskedIBAN string `json:"masked_iban,omitempty"`
	// Fingerprint is a keyed hash of the raw IBAN, so repeat submissions can
	// be correlated without storing the account number.
	Fingerprint string `json:"fingerprint,omitempty"`
}

type AuditEvent string

const (
	// Validation events
	EventIBANValidated AuditEvent = "iban_validated"

	// Rate limit events
	EventRateLimitExceeded AuditEvent = "rate_limit_exceeded"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventIBANValidated:     CategoryCompliance,
	EventRateLimitExceeded: CategorySecurity,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}
