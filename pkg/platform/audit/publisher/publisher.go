// Package publisher fans audit events out to a Store, either synchronously or
// through a bounded buffer drained by a background worker.
package publisher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	audit "ibancheck/pkg/platform/audit"
	"ibancheck/pkg/platform/audit/worker"
)

// Publisher emits audit events to a store. In async mode Emit never blocks on
// the store: events go into a ring buffer that drops the oldest entry when full.
type Publisher struct {
	store  audit.Store
	logger *slog.Logger

	bufferSize    int
	batchSize     int
	flushInterval time.Duration

	buffer *RingBuffer
	notify chan struct{}
	worker *worker.Worker
	cancel context.CancelFunc
	done   chan struct{}

	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithAsyncBuffer enables async mode with a buffer of the given size.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.bufferSize = size
	}
}

// WithBatchSize sets how many events the worker persists per dequeue.
func WithBatchSize(n int) Option {
	return func(p *Publisher) {
		p.batchSize = n
	}
}

// WithFlushInterval sets the worker's idle polling interval.
func WithFlushInterval(d time.Duration) Option {
	return func(p *Publisher) {
		p.flushInterval = d
	}
}

// WithLogger sets a logger for error reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// NewPublisher creates a publisher. Without WithAsyncBuffer every Emit writes
// to the store before returning.
func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:         store,
		logger:        slog.Default(),
		batchSize:     100,
		flushInterval: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.bufferSize > 0 {
		p.buffer = NewRingBuffer(p.bufferSize)
		p.notify = make(chan struct{}, 1)
		p.worker = worker.NewWorker(store, p.buffer, p.notify, p.batchSize, p.flushInterval, p.logger)

		ctx, cancel := context.WithCancel(context.Background())
		p.cancel = cancel
		p.done = make(chan struct{})
		go func() {
			defer close(p.done)
			_ = p.worker.Run(ctx)
		}()
	}
	return p
}

// Emit records an event. ID, timestamp and category are filled in when unset.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	// Holding the read lock keeps Close from finishing its final drain while
	// an enqueue is in flight.
	p.mu.RLock()
	if p.buffer == nil || p.closed {
		p.mu.RUnlock()
		return p.store.Append(ctx, event)
	}
	dropped := p.buffer.Enqueue(event)
	p.mu.RUnlock()

	if dropped {
		p.logger.WarnContext(ctx, "audit buffer full, dropped oldest event",
			"dropped_total", p.buffer.Dropped(),
		)
	}
	select {
	case p.notify <- struct{}{}:
	default:
	}
	return nil
}

// List returns the most recent events from the underlying store, newest first.
func (p *Publisher) List(ctx context.Context, limit int) ([]audit.Event, error) {
	return p.store.ListRecent(ctx, limit)
}

// Dropped returns the number of events evicted from a full buffer.
func (p *Publisher) Dropped() int64 {
	if p.buffer == nil {
		return 0
	}
	return p.buffer.Dropped()
}

// Pending returns the number of buffered events not yet persisted.
func (p *Publisher) Pending() int {
	if p.buffer == nil {
		return 0
	}
	return p.buffer.Len()
}

// Close stops the worker after draining the buffer. Events emitted after
// Close are written synchronously.
func (p *Publisher) Close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()

		if p.cancel != nil {
			p.cancel()
			<-p.done
			// events enqueued between the worker's final drain and closed=true
			p.worker.Drain(context.Background())
		}
	})
}
