package worker

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	audit "ibancheck/pkg/platform/audit"
)

// Source yields buffered events in FIFO order.
type Source interface {
	DequeueBatch(n int) []audit.Event
}

// Worker drains a Source into a Store. It wakes on notify and on a periodic
// tick, so a missed signal delays an event by at most one interval.
type Worker struct {
	store     audit.Store
	source    Source
	notify    <-chan struct{}
	batchSize int
	interval  time.Duration
	logger    *slog.Logger

	persisted atomic.Int64
	failed    atomic.Int64
}

func NewWorker(store audit.Store, source Source, notify <-chan struct{}, batchSize int, interval time.Duration, logger *slog.Logger) *Worker {
	if batchSize <= 0 {
		batchSize = 100
	}
	if interval <= 0 {
		interval = time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		store:     store,
		source:    source,
		notify:    notify,
		batchSize: batchSize,
		interval:  interval,
		logger:    logger,
	}
}

// Run processes events until ctx is cancelled, then drains whatever is left
// in the source before returning.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.Drain(context.WithoutCancel(ctx))
			return nil
		case <-w.notify:
			w.Drain(ctx)
		case <-ticker.C:
			w.Drain(ctx)
		}
	}
}

// Drain persists every event currently in the source. Store errors are
// logged and counted; the event is not retried.
func (w *Worker) Drain(ctx context.Context) {
	for {
		batch := w.source.DequeueBatch(w.batchSize)
		if len(batch) == 0 {
			return
		}
		for _, event := range batch {
			if err := w.store.Append(ctx, event); err != nil {
				w.failed.Add(1)
				w.logger.ErrorContext(ctx, "failed to persist audit event",
					"action", event.Action,
					"event_id", event.ID,
					"error", err,
				)
				continue
			}
			w.persisted.Add(1)
		}
	}
}

// Persisted returns the number of events written to the store.
func (w *Worker) Persisted() int64 { return w.persisted.Load() }

// Failed returns the number of events the store rejected.
func (w *Worker) Failed() int64 { return w.failed.Load() }
