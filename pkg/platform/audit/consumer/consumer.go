// Package consumer archives the Kafka audit stream into an audit.Store.
package consumer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Fetcher is the subset of *kgo.Client the consumer needs.
type Fetcher interface {
	PollFetches(ctx context.Context) kgo.Fetches
	CommitRecords(ctx context.Context, rs ...*kgo.Record) error
}

// Consumer polls audit records and hands them to a RecordHandler.
type Consumer struct {
	client  Fetcher
	handler RecordHandler
	logger  *slog.Logger

	processed int
}

func New(client Fetcher, handler RecordHandler, logger *slog.Logger) *Consumer {
	return &Consumer{client: client, handler: handler, logger: logger}
}

// Run consumes until ctx is cancelled or the client is closed. Handled
// records are committed after each poll. On a handler error Run commits what
// came before the failing record and returns the error, so a restart resumes
// from the failed record.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			return nil
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			if !errors.Is(err, context.Canceled) {
				c.logger.Warn("fetch error", "topic", topic, "partition", partition, "error", err)
			}
		})

		if err := c.process(ctx, fetches); err != nil {
			return err
		}
	}
}

func (c *Consumer) process(ctx context.Context, fetches kgo.Fetches) error {
	var handled []*kgo.Record
	var handleErr error

	iter := fetches.RecordIter()
	for !iter.Done() {
		rec := iter.Next()
		if err := c.handler.Handle(ctx, rec); err != nil {
			handleErr = fmt.Errorf("handle record %s/%d@%d: %w", rec.Topic, rec.Partition, rec.Offset, err)
			break
		}
		handled = append(handled, rec)
	}

	if len(handled) > 0 {
		// use a fresh context so a shutdown still commits finished work
		if err := c.client.CommitRecords(context.WithoutCancel(ctx), handled...); err != nil {
			return fmt.Errorf("commit offsets: %w", err)
		}
		c.processed += len(handled)
		c.logger.Debug("committed audit records", "count", len(handled), "total", c.processed)
	}
	return handleErr
}

// Processed returns the number of committed records.
func (c *Consumer) Processed() int {
	return c.processed
}
