package consumer

import (
	"context"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"ibancheck/pkg/platform/audit"
)

// CategoryHeader is the record header the Kafka audit store stamps with the
// event category.
const CategoryHeader = "category"

// RecordHandler handles one audit record. A returned error leaves the record
// uncommitted so it is redelivered.
type RecordHandler interface {
	Handle(ctx context.Context, rec *kgo.Record) error
}

// Router dispatches records to category-specific handlers.
type Router struct {
	handlers map[audit.EventCategory]RecordHandler
	fallback RecordHandler
	logger   *slog.Logger
}

// NewRouter creates a category router with an optional fallback handler.
func NewRouter(logger *slog.Logger, fallback RecordHandler) *Router {
	return &Router{
		handlers: make(map[audit.EventCategory]RecordHandler),
		fallback: fallback,
		logger:   logger,
	}
}

// Register adds a handler for a category.
func (r *Router) Register(category audit.EventCategory, handler RecordHandler) {
	r.handlers[category] = handler
}

// Handle routes the record on its category header.
func (r *Router) Handle(ctx context.Context, rec *kgo.Record) error {
	category := audit.EventCategory(header(rec, CategoryHeader))
	handler, ok := r.handlers[category]
	if !ok {
		if r.fallback != nil {
			return r.fallback.Handle(ctx, rec)
		}
		r.logger.Warn("no handler for audit category, skipping record",
			"category", category,
			"partition", rec.Partition,
			"offset", rec.Offset,
		)
		return nil // commit to avoid redelivery
	}
	return handler.Handle(ctx, rec)
}

func header(rec *kgo.Record, key string) string {
	for _, h := range rec.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
