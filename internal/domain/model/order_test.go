package model

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestOrderStatusCanTransitionOnlyForward(t *testing.T) {
	forward := []struct{ from, to OrderStatus }{
		{OrderStatusNew, OrderStatusProcessing},
		{OrderStatusProcessing, OrderStatusDelivering},
		{OrderStatusDelivering, OrderStatusDelivered},
		{OrderStatusNew, OrderStatusDelivering},
	}
	for _, tc := range forward {
		if !tc.from.CanTransition(tc.to) {
			t.Errorf("%s -> %s should be allowed", tc.from, tc.to)
		}
	}

	backward := []struct{ from, to OrderStatus }{
		{OrderStatusProcessing, OrderStatusNew},
		{OrderStatusDelivering, OrderStatusProcessing},
		{OrderStatusDelivered, OrderStatusNew},
		{OrderStatusDelivering, OrderStatusDelivering},
	}
	for _, tc := range backward {
		if tc.from.CanTransition(tc.to) {
			t.Errorf("%s -> %s must be rejected", tc.from, tc.to)
		}
	}
}

func TestOrderStatusCancellationOutsideSagaPath(t *testing.T) {
	if OrderStatusNew.CanTransition(OrderStatusCancelled) {
		t.Error("events must not cancel orders")
	}
	if !OrderStatusCancelled.Valid() {
		t.Error("CANCELLED is a valid state for manager updates")
	}
	if OrderStatus("SHIPPED").Valid() {
		t.Error("unknown status must be invalid")
	}
}

func TestOrderTotalAmount(t *testing.T) {
	order := &Order{Items: []OrderItem{
		{Price: decimal.RequireFromString("10.00"), Quantity: 2},
		{Price: decimal.RequireFromString("5.00"), Quantity: 1},
	}}

	if total := order.TotalAmount(); !total.Equal(decimal.RequireFromString("25.00")) {
		t.Fatalf("expected 25.00, got %s", total)
	}
}
