package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"ibancheck/pkg/platform/audit"
	"ibancheck/pkg/platform/sentinel"
)

type fakeProducer struct {
	records []*kgo.Record
	err     error
}

func (f *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		if f.err == nil {
			f.records = append(f.records, r)
		}
		results = append(results, kgo.ProduceResult{Record: r, Err: f.err})
	}
	return results
}

func TestStore_Append(t *testing.T) {
	producer := &fakeProducer{}
	store := New(producer, "iban.audit", 10)

	err := store.Append(context.Background(), audit.Event{
		Action:      string(audit.EventIBANValidated),
		Decision:    "valid",
		Fingerprint: "abc123",
	})
	require.NoError(t, err)
	require.Len(t, producer.records, 1)

	rec := producer.records[0]
	assert.Equal(t, "iban.audit", rec.Topic)
	assert.Equal(t, "abc123", string(rec.Key))

	var got audit.Event
	require.NoError(t, json.Unmarshal(rec.Value, &got))
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, audit.CategoryCompliance, got.Category)
	assert.Equal(t, "valid", got.Decision)

	recent, err := store.ListRecent(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, got.ID, recent[0].ID)
}

func TestStore_KeyFallsBackToEventID(t *testing.T) {
	producer := &fakeProducer{}
	store := New(producer, "iban.audit", 10)

	require.NoError(t, store.Append(context.Background(), audit.Event{
		ID:     "evt-1",
		Action: string(audit.EventRateLimitExceeded),
	}))
	assert.Equal(t, "evt-1", string(producer.records[0].Key))
}

func TestStore_ProduceError(t *testing.T) {
	producer := &fakeProducer{err: errors.New("broker down")}
	store := New(producer, "iban.audit", 10)

	err := store.Append(context.Background(), audit.Event{Action: "x"})
	require.ErrorIs(t, err, sentinel.ErrUnavailable)

	recent, err := store.ListRecent(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, recent, "failed events are not reported as produced")
}
