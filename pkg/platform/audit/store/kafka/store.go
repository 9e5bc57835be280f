// Package kafka streams audit events to a Kafka topic for downstream SIEM and
// compliance consumers.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "ibancheck/pkg/platform/audit"
	"ibancheck/pkg/platform/audit/store/memory"
	"ibancheck/pkg/platform/sentinel"
)

// Producer is the subset of *kgo.Client the store needs.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Store publishes every event to topic. Kafka is not queryable, so the last
// events produced by this process are kept in a bounded tail for ListRecent.
type Store struct {
	producer Producer
	topic    string
	tail     *memory.InMemoryStore
}

// New creates a Kafka audit store. tailSize bounds the local tail.
func New(producer Producer, topic string, tailSize int) *Store {
	return &Store{
		producer: producer,
		topic:    topic,
		tail:     memory.NewInMemoryStoreWithCapacity(tailSize),
	}
}

// Append produces the event synchronously. The record key is the IBAN
// fingerprint when present so every check of the same account lands on one
// partition in order.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	key := event.Fingerprint
	if key == "" {
		key = event.ID
	}
	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(key),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "category", Value: []byte(event.Category)},
			{Key: "action", Value: []byte(event.Action)},
		},
	}
	if err := s.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w: %w", sentinel.ErrUnavailable, err)
	}
	return s.tail.Append(ctx, event)
}

// ListRecent returns events produced by this process, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	return s.tail.ListRecent(ctx, limit)
}
