package audit

import "context"

// Store persists audit events and serves the most recent ones back for
// operator inspection.
type Store interface {
	Append(ctx context.Context, event Event) error
	// ListRecent returns up to limit events, newest first.
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}
