package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/omnicart/fulfillment/internal/event"
)

// Publisher writes saga events to one Kafka topic. Messages sharing a key
// land on the same partition, so events about one order stay ordered.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher builds a publisher for the given topic.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) *Publisher {
	writer := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: writer, logger: logger}
}

// Publish sends one envelope keyed by key.
func (p *Publisher) Publish(ctx context.Context, key string, env event.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	if err := p.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(key),
		Value: data,
	}); err != nil {
		return fmt.Errorf("write %s: %w", env.Kind, err)
	}
	p.logger.Info("event published",
		slog.String("type", string(env.Kind)),
		slog.String("event_id", env.EventID),
		slog.String("topic", p.writer.Topic),
		slog.String("key", key),
	)
	return nil
}

// Close flushes and releases the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

var _ event.Publisher = (*Publisher)(nil)
