package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (wrapped) so
// handlers can translate them into domain errors without knowing the driver.
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	// ErrUnavailable: a backing service (database, broker, cache) could not
	// be reached or rejected the call.
	ErrUnavailable = errors.New("unavailable")
)
