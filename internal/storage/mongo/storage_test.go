package mongo

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/omnicart/fulfillment/internal/domain/model"
)

func TestPaymentDocRoundTrip(t *testing.T) {
	payment := &model.Payment{
		ID:        "p-1",
		OrderID:   42,
		UserID:    7,
		Status:    model.PaymentStatusPending,
		Amount:    decimal.RequireFromString("25.00"),
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}

	doc := toDoc(payment)
	if doc.Amount != "25" && doc.Amount != "25.00" {
		t.Fatalf("unexpected stored amount %q", doc.Amount)
	}

	restored, err := fromDoc(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if restored.ID != payment.ID || restored.OrderID != payment.OrderID {
		t.Fatalf("unexpected payment %+v", restored)
	}
	if !restored.Amount.Equal(payment.Amount) {
		t.Fatalf("amount lost precision: %s != %s", restored.Amount, payment.Amount)
	}
	if restored.Status != model.PaymentStatusPending {
		t.Fatalf("unexpected status %s", restored.Status)
	}
}

func TestFromDocRejectsMalformedAmount(t *testing.T) {
	doc := &paymentDoc{ID: "p-1", Amount: "not-a-number"}
	if _, err := fromDoc(doc); err == nil {
		t.Fatal("expected error for malformed amount")
	}
}
