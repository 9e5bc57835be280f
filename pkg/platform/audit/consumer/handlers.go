package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"

	"ibancheck/pkg/platform/audit"
)

var errMalformed = errors.New("malformed audit record")

// decode parses a record produced by the Kafka audit store. Malformed
// records are reported with errMalformed so handlers can commit past them.
func decode(rec *kgo.Record) (audit.Event, error) {
	var event audit.Event
	if err := json.Unmarshal(rec.Value, &event); err != nil {
		return audit.Event{}, fmt.Errorf("%w: %w", errMalformed, err)
	}
	if _, err := uuid.Parse(event.ID); err != nil {
		return audit.Event{}, fmt.Errorf("%w: event id %q", errMalformed, event.ID)
	}
	if event.Action == "" {
		return audit.Event{}, fmt.Errorf("%w: missing action", errMalformed)
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = rec.Timestamp
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}
	return event, nil
}

// ComplianceHandler archives validation decisions. Compliance events must
// carry a decision; store failures are returned so the record is retried.
type ComplianceHandler struct {
	store  audit.Store
	logger *slog.Logger
}

func NewComplianceHandler(store audit.Store, logger *slog.Logger) *ComplianceHandler {
	return &ComplianceHandler{store: store, logger: logger}
}

func (h *ComplianceHandler) Handle(ctx context.Context, rec *kgo.Record) error {
	event, err := decode(rec)
	if err == nil && event.Decision == "" {
		err = fmt.Errorf("%w: compliance event without decision", errMalformed)
	}
	if err != nil {
		h.logger.Error("CRITICAL: dropping malformed compliance event",
			"partition", rec.Partition,
			"offset", rec.Offset,
			"error", err,
		)
		return nil
	}

	if err := h.store.Append(ctx, event); err != nil {
		h.logger.Error("failed to store compliance event",
			"event_id", event.ID,
			"action", event.Action,
			"error", err,
		)
		return fmt.Errorf("store compliance event: %w", err)
	}

	h.logger.Debug("stored compliance event",
		"event_id", event.ID,
		"decision", event.Decision,
	)
	return nil
}

// SecurityHandler archives security events and surfaces them in the log.
type SecurityHandler struct {
	store  audit.Store
	logger *slog.Logger
}

func NewSecurityHandler(store audit.Store, logger *slog.Logger) *SecurityHandler {
	return &SecurityHandler{store: store, logger: logger}
}

func (h *SecurityHandler) Handle(ctx context.Context, rec *kgo.Record) error {
	event, err := decode(rec)
	if err != nil {
		h.logger.Warn("dropping malformed security event",
			"partition", rec.Partition,
			"offset", rec.Offset,
			"error", err,
		)
		return nil
	}
	if event.Severity == "" {
		event.Severity = audit.SeverityWarning
	}

	h.logger.Warn("security audit event",
		"action", event.Action,
		"subject", event.Subject,
		"ip", event.IP,
		"severity", event.Severity,
		"request_id", event.RequestID,
	)

	if err := h.store.Append(ctx, event); err != nil {
		h.logger.Error("failed to store security event",
			"event_id", event.ID,
			"action", event.Action,
			"error", err,
		)
		return fmt.Errorf("store security event: %w", err)
	}
	return nil
}

// OpsHandler archives operational events best-effort: failures are logged
// and the record is committed anyway.
type OpsHandler struct {
	store  audit.Store
	logger *slog.Logger
}

func NewOpsHandler(store audit.Store, logger *slog.Logger) *OpsHandler {
	return &OpsHandler{store: store, logger: logger}
}

func (h *OpsHandler) Handle(ctx context.Context, rec *kgo.Record) error {
	event, err := decode(rec)
	if err != nil {
		h.logger.Debug("dropping malformed ops event", "offset", rec.Offset, "error", err)
		return nil
	}
	if err := h.store.Append(ctx, event); err != nil {
		h.logger.Warn("failed to store ops event",
			"event_id", event.ID,
			"action", event.Action,
			"error", err,
		)
	}
	return nil
}

// NewArchiveRouter routes every category into store with the handler
// semantics above.
func NewArchiveRouter(store audit.Store, logger *slog.Logger) *Router {
	ops := NewOpsHandler(store, logger)
	r := NewRouter(logger, ops)
	r.Register(audit.CategoryCompliance, NewComplianceHandler(store, logger))
	r.Register(audit.CategorySecurity, NewSecurityHandler(store, logger))
	r.Register(audit.CategoryOperations, ops)
	return r
}
