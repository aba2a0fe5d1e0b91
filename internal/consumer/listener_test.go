package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/omnicart/fulfillment/internal/event"
	"github.com/omnicart/fulfillment/internal/test"
	"github.com/omnicart/fulfillment/internal/usecase"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

type orderUseCaseStub struct {
	usecase.OrderUseCase

	creations atomic.Int64
	updates   atomic.Int64
	err       error
}

func (s *orderUseCaseStub) ProcessPaymentCreation(ctx context.Context, eventID string, ev event.PaymentCreated) error {
	s.creations.Add(1)
	return s.err
}

func (s *orderUseCaseStub) ProcessPaymentUpdate(ctx context.Context, eventID string, ev event.PaymentStatusUpdated) error {
	s.updates.Add(1)
	return s.err
}

type paymentUseCaseStub struct {
	usecase.PaymentUseCase

	calls atomic.Int64
	err   error
}

func (s *paymentUseCaseStub) ProcessOrderCreation(ctx context.Context, eventID string, ev event.OrderCreated) error {
	s.calls.Add(1)
	return s.err
}

func envelope(t *testing.T, kind event.Kind, payload any) event.Envelope {
	t.Helper()
	env, err := event.New(kind, payload)
	if err != nil {
		t.Fatalf("build envelope: %v", err)
	}
	return env
}

func TestPaymentListenerDispatchesByKind(t *testing.T) {
	uc := &orderUseCaseStub{}
	listener := NewPaymentListener(uc, test.NewProcessedEventStub(), "group-a", discardLogger())

	created := envelope(t, event.KindPaymentCreated, event.PaymentCreated{PaymentID: "p-1", OrderID: 1})
	updated := envelope(t, event.KindPaymentStatusUpdated, event.PaymentStatusUpdated{PaymentID: "p-1", OrderID: 1})

	if err := listener.Handle(context.Background(), created); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := listener.Handle(context.Background(), updated); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if uc.creations.Load() != 1 || uc.updates.Load() != 1 {
		t.Fatalf("unexpected dispatch counts %d %d", uc.creations.Load(), uc.updates.Load())
	}
}

func TestPaymentListenerSkipsKnownDuplicates(t *testing.T) {
	uc := &orderUseCaseStub{}
	events := test.NewProcessedEventStub()
	listener := NewPaymentListener(uc, events, "group-a", discardLogger())

	env := envelope(t, event.KindPaymentCreated, event.PaymentCreated{PaymentID: "p-1", OrderID: 1})
	_ = events.MarkProcessed(context.Background(), "group-a", env.EventID)

	if err := listener.Handle(context.Background(), env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if uc.creations.Load() != 0 {
		t.Fatal("duplicate must not reach the use case")
	}
}

func TestPaymentListenerProcessesWhenDedupLookupFails(t *testing.T) {
	uc := &orderUseCaseStub{}
	events := test.NewProcessedEventStub()
	events.IsProcessedFn = func(context.Context, string, string) (bool, error) {
		return false, errors.New("redis down")
	}
	listener := NewPaymentListener(uc, events, "group-a", discardLogger())

	env := envelope(t, event.KindPaymentCreated, event.PaymentCreated{PaymentID: "p-1", OrderID: 1})
	if err := listener.Handle(context.Background(), env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if uc.creations.Load() != 1 {
		t.Fatal("lookup failure must fall through to the transactional check")
	}
}

func TestPaymentListenerAcksMalformedPayload(t *testing.T) {
	uc := &orderUseCaseStub{}
	listener := NewPaymentListener(uc, test.NewProcessedEventStub(), "group-a", discardLogger())

	env := event.Envelope{EventID: "e-1", Kind: event.KindPaymentCreated, Payload: json.RawMessage(`{`)}
	if err := listener.Handle(context.Background(), env); err != nil {
		t.Fatalf("malformed payload must be acknowledged, got %v", err)
	}
	if uc.creations.Load() != 0 {
		t.Fatal("malformed payload must not reach the use case")
	}
}

func TestPaymentListenerIgnoresUnknownKind(t *testing.T) {
	uc := &orderUseCaseStub{}
	listener := NewPaymentListener(uc, test.NewProcessedEventStub(), "group-a", discardLogger())

	env := envelope(t, event.Kind("SomethingElse"), struct{}{})
	if err := listener.Handle(context.Background(), env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if uc.creations.Load() != 0 || uc.updates.Load() != 0 {
		t.Fatal("unknown kinds must be ignored")
	}
}

func TestPaymentListenerPropagatesHandlerError(t *testing.T) {
	uc := &orderUseCaseStub{err: errors.New("storage down")}
	listener := NewPaymentListener(uc, test.NewProcessedEventStub(), "group-a", discardLogger())

	env := envelope(t, event.KindPaymentCreated, event.PaymentCreated{PaymentID: "p-1", OrderID: 1})
	if err := listener.Handle(context.Background(), env); err == nil {
		t.Fatal("expected error so the broker redelivers")
	}
}

func TestOrderListenerDispatchesOrderCreated(t *testing.T) {
	uc := &paymentUseCaseStub{}
	listener := NewOrderListener(uc, discardLogger())

	env := envelope(t, event.KindOrderCreated, event.OrderCreated{OrderID: 1})
	if err := listener.Handle(context.Background(), env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if uc.calls.Load() != 1 {
		t.Fatalf("expected one dispatch, got %d", uc.calls.Load())
	}
}

func TestOrderListenerAcksMalformedPayload(t *testing.T) {
	uc := &paymentUseCaseStub{}
	listener := NewOrderListener(uc, discardLogger())

	env := event.Envelope{EventID: "e-1", Kind: event.KindOrderCreated, Payload: json.RawMessage(`{`)}
	if err := listener.Handle(context.Background(), env); err != nil {
		t.Fatalf("malformed payload must be acknowledged, got %v", err)
	}
	if uc.calls.Load() != 0 {
		t.Fatal("malformed payload must not reach the use case")
	}
}
