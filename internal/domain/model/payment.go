package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus describes the settlement lifecycle.
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "PENDING"
	PaymentStatusProcessing PaymentStatus = "PROCESSING"
	PaymentStatusSucceeded  PaymentStatus = "SUCCEEDED"
	PaymentStatusFailed     PaymentStatus = "FAILED"
)

var paymentStatusRank = map[PaymentStatus]int{
	PaymentStatusPending:    0,
	PaymentStatusProcessing: 1,
	PaymentStatusSucceeded:  2,
	PaymentStatusFailed:     2,
}

// Valid reports whether the status is a known settlement state.
func (s PaymentStatus) Valid() bool {
	_, ok := paymentStatusRank[s]
	return ok
}

// Terminal reports whether no further transitions are possible.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentStatusSucceeded || s == PaymentStatusFailed
}

// CanTransition reports whether a payment may move from s to next. Statuses
// never move backward.
func (s PaymentStatus) CanTransition(next PaymentStatus) bool {
	from, ok := paymentStatusRank[s]
	if !ok || s.Terminal() {
		return false
	}
	to, ok := paymentStatusRank[next]
	if !ok {
		return false
	}
	return to > from
}

// Payment settles a single order. Exactly one payment exists per order; the
// amount is computed once at creation and never changes.
type Payment struct {
	ID        string
	OrderID   int64
	UserID    int64
	Status    PaymentStatus
	Amount    decimal.Decimal
	CreatedAt time.Time
}
