package worker

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "ibancheck/pkg/platform/audit"
	"ibancheck/pkg/platform/audit/store/memory"
)

type sliceSource struct {
	mu     sync.Mutex
	events []audit.Event
}

func (s *sliceSource) push(e audit.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *sliceSource) DequeueBatch(n int) []audit.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	n = min(n, len(s.events))
	if n == 0 {
		return nil
	}
	out := s.events[:n]
	s.events = s.events[n:]
	return out
}

type failingStore struct{}

func (failingStore) Append(context.Context, audit.Event) error {
	return errors.New("store down")
}

func (failingStore) ListRecent(context.Context, int) ([]audit.Event, error) {
	return nil, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestWorker_DrainsOnNotify(t *testing.T) {
	store := memory.NewInMemoryStore()
	src := &sliceSource{}
	notify := make(chan struct{}, 1)
	w := NewWorker(store, src, notify, 2, time.Hour, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	for range 5 {
		src.push(audit.Event{Action: "x"})
	}
	notify <- struct{}{}

	require.Eventually(t, func() bool { return w.Persisted() == 5 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

func TestWorker_DrainsOnShutdown(t *testing.T) {
	store := memory.NewInMemoryStore()
	src := &sliceSource{}
	w := NewWorker(store, src, nil, 10, time.Hour, quietLogger())

	src.push(audit.Event{Action: "a"})
	src.push(audit.Event{Action: "b"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, w.Run(ctx))

	all, err := store.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestWorker_StoreErrorsAreCounted(t *testing.T) {
	src := &sliceSource{}
	w := NewWorker(failingStore{}, src, nil, 10, time.Hour, quietLogger())
	src.push(audit.Event{Action: "a"})
	src.push(audit.Event{Action: "b"})

	w.Drain(context.Background())

	assert.Equal(t, int64(2), w.Failed())
	assert.Zero(t, w.Persisted())
}
