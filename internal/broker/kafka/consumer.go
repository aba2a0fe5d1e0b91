package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/omnicart/fulfillment/internal/event"
)

const (
	handleRetryDelay    = 500 * time.Millisecond
	handleRetryDelayCap = 30 * time.Second
)

// Handler applies the effects of one delivered envelope. Handlers must be
// idempotent: the broker delivers at least once.
type Handler interface {
	Handle(ctx context.Context, env event.Envelope) error
}

// Consumer reads one topic on behalf of one consumer group and feeds
// envelopes to a handler. Offsets are committed only after the handler
// succeeds; a failing handler is retried in place with backoff so no event
// is skipped.
type Consumer struct {
	reader  *kafkago.Reader
	handler Handler
	logger  *slog.Logger

	retryDelay    time.Duration
	retryDelayCap time.Duration

	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewConsumer builds a consumer for topic within the given group.
func NewConsumer(brokers []string, topic, group string, handler Handler, logger *slog.Logger) *Consumer {
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: group,
	})
	return &Consumer{
		reader:        reader,
		handler:       handler,
		logger:        logger,
		retryDelay:    handleRetryDelay,
		retryDelayCap: handleRetryDelayCap,
	}
}

// Start launches the background consume loop.
func (c *Consumer) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go c.run(runCtx)
}

// Stop halts consumption and waits for the in-flight message to finish.
func (c *Consumer) Stop() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.mu.Unlock()

	c.wg.Wait()
	_ = c.reader.Close()
}

func (c *Consumer) run(ctx context.Context) {
	defer c.wg.Done()
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return
			}
			c.logger.Error("fetch message failed", slog.String("error", err.Error()))
			continue
		}

		var env event.Envelope
		if err := json.Unmarshal(msg.Value, &env); err != nil {
			// Undecodable messages cannot ever succeed; commit past them.
			c.logger.Error("skip undecodable message",
				slog.String("topic", msg.Topic),
				slog.Int64("offset", msg.Offset),
				slog.String("error", err.Error()),
			)
			c.commit(ctx, msg)
			continue
		}

		if err := c.handleWithRetry(ctx, env); err != nil {
			return
		}

		c.commit(ctx, msg)
	}
}

// handleWithRetry applies one envelope until it succeeds or the consumer
// stops. The loop holds the partition on purpose: committing past a failed
// message would advance the group offset and the event would never be
// redelivered. Unprocessed events survive a restart because their offset
// stays uncommitted.
func (c *Consumer) handleWithRetry(ctx context.Context, env event.Envelope) error {
	delay := c.retryDelay
	for {
		err := c.handler.Handle(ctx, env)
		if err == nil {
			return nil
		}
		c.logger.Error("event handling failed, retrying",
			slog.String("type", string(env.Kind)),
			slog.String("event_id", env.EventID),
			slog.Duration("retry_in", delay),
			slog.String("error", err.Error()),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		if delay < c.retryDelayCap {
			delay *= 2
			if delay > c.retryDelayCap {
				delay = c.retryDelayCap
			}
		}
	}
}

func (c *Consumer) commit(ctx context.Context, msg kafkago.Message) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		c.logger.Error("commit failed",
			slog.Int64("offset", msg.Offset),
			slog.String("error", err.Error()),
		)
	}
}
