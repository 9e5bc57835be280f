//go:build integration

package consumer_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	platformkafka "ibancheck/internal/platform/kafka"
	"ibancheck/pkg/platform/audit"
	"ibancheck/pkg/platform/audit/consumer"
	"ibancheck/pkg/platform/audit/store/kafka"
	"ibancheck/pkg/platform/audit/store/memory"
	"ibancheck/pkg/testutil/containers"
)

func TestArchiveRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	redpanda := containers.GetManager().GetRedpanda(t)
	brokers := []string{redpanda.Broker}
	topic := "iban.audit.archive"
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	producer, err := platformkafka.NewProducer(brokers, topic)
	require.NoError(t, err)
	defer producer.Close()
	require.NoError(t, platformkafka.EnsureTopic(ctx, producer, topic))

	source := kafka.New(producer, topic, 10)
	require.NoError(t, source.Append(ctx, audit.Event{
		Action:      string(audit.EventIBANValidated),
		Decision:    "valid",
		Fingerprint: "fp-archive",
	}))
	require.NoError(t, source.Append(ctx, audit.Event{
		Action:  string(audit.EventRateLimitExceeded),
		Subject: "198.51.100.4",
	}))

	client, err := platformkafka.NewConsumer(brokers, topic, "archive-test")
	require.NoError(t, err)
	defer client.Close()

	archive := memory.NewInMemoryStore()
	c := consumer.New(client, consumer.NewArchiveRouter(archive, logger), logger)

	runCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- c.Run(runCtx) }()

	require.Eventually(t, func() bool {
		events, _ := archive.ListAll(context.Background())
		return len(events) == 2
	}, 20*time.Second, 100*time.Millisecond)
	stop()
	require.NoError(t, <-done)

	events, err := archive.ListAll(context.Background())
	require.NoError(t, err)
	categories := []audit.EventCategory{events[0].Category, events[1].Category}
	assert.ElementsMatch(t, []audit.EventCategory{audit.CategoryCompliance, audit.CategorySecurity}, categories)
	assert.Equal(t, 2, c.Processed())
}
