package model

import "testing"

func TestPaymentStatusTransitions(t *testing.T) {
	if !PaymentStatusPending.CanTransition(PaymentStatusProcessing) {
		t.Error("PENDING -> PROCESSING should be allowed")
	}
	if !PaymentStatusProcessing.CanTransition(PaymentStatusSucceeded) {
		t.Error("PROCESSING -> SUCCEEDED should be allowed")
	}
	if !PaymentStatusProcessing.CanTransition(PaymentStatusFailed) {
		t.Error("PROCESSING -> FAILED should be allowed")
	}
	if PaymentStatusSucceeded.CanTransition(PaymentStatusFailed) {
		t.Error("terminal statuses must not move")
	}
	if PaymentStatusFailed.CanTransition(PaymentStatusProcessing) {
		t.Error("payment status must never regress")
	}
}

func TestPaymentStatusTerminal(t *testing.T) {
	if PaymentStatusPending.Terminal() || PaymentStatusProcessing.Terminal() {
		t.Error("pending statuses are not terminal")
	}
	if !PaymentStatusSucceeded.Terminal() || !PaymentStatusFailed.Terminal() {
		t.Error("settlement outcomes are terminal")
	}
}
