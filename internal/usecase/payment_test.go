package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/omnicart/fulfillment/internal/domain/model"
	"github.com/omnicart/fulfillment/internal/event"
	"github.com/omnicart/fulfillment/internal/test"
)

const paymentGroup = "order-processing-group"

func newPaymentFixture() (*test.PaymentRepositoryStub, *test.ProcessedEventStub, *test.ProcessorStub, *test.PublisherRecorder, PaymentUseCase) {
	payments := test.NewPaymentRepositoryStub()
	events := test.NewProcessedEventStub()
	proc := &test.ProcessorStub{}
	publisher := &test.PublisherRecorder{}
	uc := NewPaymentUseCase(payments, events, proc, publisher, paymentGroup, discardLogger())
	return payments, events, proc, publisher, uc
}

func orderCreatedEvent() event.OrderCreated {
	return event.OrderCreated{
		OrderID: 42,
		UserID:  7,
		Status:  model.OrderStatusNew,
		Items: []event.OrderItem{
			{ItemID: 1, Name: "keyboard", Price: decimal.RequireFromString("10.00"), Quantity: 2},
			{ItemID: 2, Name: "mouse", Price: decimal.RequireFromString("5.00"), Quantity: 1},
		},
	}
}

func TestProcessOrderCreationHappyPath(t *testing.T) {
	payments, events, proc, publisher, uc := newPaymentFixture()

	if err := uc.ProcessOrderCreation(context.Background(), "evt-1", orderCreatedEvent()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(payments.Payments) != 1 {
		t.Fatalf("expected one payment, got %d", len(payments.Payments))
	}
	payment, err := payments.GetByOrderID(context.Background(), 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !payment.Amount.Equal(decimal.RequireFromString("25.00")) {
		t.Fatalf("expected amount 25.00, got %s", payment.Amount)
	}
	if payment.Status != model.PaymentStatusSucceeded {
		t.Fatalf("expected SUCCEEDED, got %s", payment.Status)
	}
	if proc.Calls.Load() != 1 {
		t.Fatalf("expected one settlement call, got %d", proc.Calls.Load())
	}

	kinds := publisher.Kinds()
	want := []event.Kind{event.KindPaymentCreated, event.KindPaymentStatusUpdated, event.KindPaymentStatusUpdated}
	if len(kinds) != len(want) {
		t.Fatalf("expected %d events, got %v", len(want), kinds)
	}
	for i, kind := range want {
		if kinds[i] != kind {
			t.Fatalf("event %d: expected %s, got %s", i, kind, kinds[i])
		}
	}

	var last event.PaymentStatusUpdated
	published := publisher.Published()
	if err := published[len(published)-1].Decode(&last); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if last.PreviousStatus != model.PaymentStatusProcessing || last.NewStatus != model.PaymentStatusSucceeded {
		t.Fatalf("unexpected final transition %+v", last)
	}

	if seen, _ := events.IsProcessed(context.Background(), paymentGroup, "evt-1"); !seen {
		t.Fatal("expected event marked processed")
	}
}

func TestProcessOrderCreationAmountIgnoresItemOrder(t *testing.T) {
	_, _, _, _, uc := newPaymentFixture()
	payments2, _, _, _, uc2 := newPaymentFixture()

	ev := orderCreatedEvent()
	reversed := orderCreatedEvent()
	reversed.Items[0], reversed.Items[1] = reversed.Items[1], reversed.Items[0]

	if err := uc.ProcessOrderCreation(context.Background(), "evt-a", ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := uc2.ProcessOrderCreation(context.Background(), "evt-b", reversed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	payment, err := payments2.GetByOrderID(context.Background(), 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !payment.Amount.Equal(decimal.RequireFromString("25.00")) {
		t.Fatalf("amount depends on item order: %s", payment.Amount)
	}
}

func TestProcessOrderCreationIsIdempotent(t *testing.T) {
	payments, _, proc, _, uc := newPaymentFixture()

	for i := 0; i < 2; i++ {
		if err := uc.ProcessOrderCreation(context.Background(), "evt-1", orderCreatedEvent()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if len(payments.Payments) != 1 {
		t.Fatalf("duplicate delivery created %d payments", len(payments.Payments))
	}
	if proc.Calls.Load() != 1 {
		t.Fatalf("duplicate delivery settled %d times", proc.Calls.Load())
	}
}

func TestProcessOrderCreationRecoversExistingPayment(t *testing.T) {
	payments, _, _, _, uc := newPaymentFixture()

	// A fresh event id with an existing payment models a crash after the
	// payment was written but before the dedup mark.
	if err := uc.ProcessOrderCreation(context.Background(), "evt-1", orderCreatedEvent()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := uc.ProcessOrderCreation(context.Background(), "evt-2", orderCreatedEvent()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(payments.Payments) != 1 {
		t.Fatalf("expected a single payment per order, got %d", len(payments.Payments))
	}
}

func TestProcessOrderCreationFailsClosedOnProcessorError(t *testing.T) {
	payments, _, proc, publisher, uc := newPaymentFixture()
	proc.SettleFn = func(context.Context) (model.PaymentStatus, error) {
		return "", errors.New("processor unreachable")
	}

	if err := uc.ProcessOrderCreation(context.Background(), "evt-1", orderCreatedEvent()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	payment, err := payments.GetByOrderID(context.Background(), 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payment.Status != model.PaymentStatusFailed {
		t.Fatalf("expected FAILED on processor error, got %s", payment.Status)
	}

	var last event.PaymentStatusUpdated
	published := publisher.Published()
	if err := published[len(published)-1].Decode(&last); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if last.NewStatus != model.PaymentStatusFailed {
		t.Fatalf("expected FAILED announced, got %s", last.NewStatus)
	}
}

func TestProcessOrderCreationDeclinedPaymentFails(t *testing.T) {
	payments, _, proc, _, uc := newPaymentFixture()
	proc.SettleFn = func(context.Context) (model.PaymentStatus, error) {
		return model.PaymentStatusFailed, nil
	}

	if err := uc.ProcessOrderCreation(context.Background(), "evt-1", orderCreatedEvent()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	payment, _ := payments.GetByOrderID(context.Background(), 42)
	if payment.Status != model.PaymentStatusFailed {
		t.Fatalf("expected FAILED, got %s", payment.Status)
	}
}

func TestProcessOrderCreationSurfacesPublishFailure(t *testing.T) {
	_, events, _, publisher, uc := newPaymentFixture()
	publisher.PublishFn = func(context.Context, string, event.Envelope) error {
		return errors.New("broker down")
	}

	if err := uc.ProcessOrderCreation(context.Background(), "evt-1", orderCreatedEvent()); err == nil {
		t.Fatal("expected publish failure to surface for redelivery")
	}
	if seen, _ := events.IsProcessed(context.Background(), paymentGroup, "evt-1"); seen {
		t.Fatal("failed run must not mark the event processed")
	}
}

func TestFindByOrderID(t *testing.T) {
	payments, _, _, _, uc := newPaymentFixture()
	payments.Payments["p-1"] = &model.Payment{ID: "p-1", OrderID: 42, Status: model.PaymentStatusSucceeded}

	payment, err := uc.FindByOrderID(context.Background(), 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payment.ID != "p-1" {
		t.Fatalf("unexpected payment %+v", payment)
	}
}
