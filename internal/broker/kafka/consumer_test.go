package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/omnicart/fulfillment/internal/event"
)

type handlerStub struct {
	calls    atomic.Int64
	failures int64
}

func (h *handlerStub) Handle(ctx context.Context, env event.Envelope) error {
	if h.calls.Add(1) <= h.failures {
		return errors.New("storage down")
	}
	return nil
}

func retryingConsumer(handler Handler) *Consumer {
	return &Consumer{
		handler:       handler,
		logger:        slog.New(slog.NewJSONHandler(io.Discard, nil)),
		retryDelay:    time.Millisecond,
		retryDelayCap: time.Millisecond,
	}
}

func TestHandleWithRetryReappliesSameEnvelopeUntilSuccess(t *testing.T) {
	handler := &handlerStub{failures: 2}
	consumer := retryingConsumer(handler)

	env := event.Envelope{EventID: "evt-1", Kind: event.KindPaymentCreated}
	if err := consumer.handleWithRetry(context.Background(), env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if handler.calls.Load() != 3 {
		t.Fatalf("expected the same envelope retried until success, got %d calls", handler.calls.Load())
	}
}

func TestHandleWithRetryStopsOnShutdown(t *testing.T) {
	handler := &handlerStub{failures: 1 << 30}
	consumer := retryingConsumer(handler)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	env := event.Envelope{EventID: "evt-1", Kind: event.KindPaymentCreated}
	if err := consumer.handleWithRetry(ctx, env); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation to stop the retry loop, got %v", err)
	}
}
