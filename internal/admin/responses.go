package admin

import "ibancheck/pkg/platform/audit"

// AuditEventsResponse wraps recent audit events for HTTP response.
type AuditEventsResponse struct {
	Events []audit.Event `json:"events"`
	Total  int           `json:"total"`
}

func FromEvents(events []audit.Event) *AuditEventsResponse {
	if events == nil {
		events = []audit.Event{}
	}
	return &AuditEventsResponse{Events: events, Total: len(events)}
}
