package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus describes the order fulfillment lifecycle.
type OrderStatus string

const (
	OrderStatusNew        OrderStatus = "NEW"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusDelivering OrderStatus = "DELIVERING"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

var orderStatusRank = map[OrderStatus]int{
	OrderStatusNew:        0,
	OrderStatusProcessing: 1,
	OrderStatusDelivering: 2,
	OrderStatusDelivered:  3,
}

// Valid reports whether the status is a known lifecycle state.
func (s OrderStatus) Valid() bool {
	if s == OrderStatusCancelled {
		return true
	}
	_, ok := orderStatusRank[s]
	return ok
}

// CanTransition reports whether the saga path may move the order from s to
// next. Event-driven transitions are strictly forward; cancellation is
// reserved for explicit manager updates which bypass this check.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	from, ok := orderStatusRank[s]
	if !ok {
		return false
	}
	to, ok := orderStatusRank[next]
	if !ok {
		return false
	}
	return to > from
}

// OrderItem is a single order line referencing a catalog item with the price
// snapshot taken at order creation.
type OrderItem struct {
	ItemID   int64
	Name     string
	Price    decimal.Decimal
	Quantity int
}

// Order describes a purchase order owned by a user profile.
type Order struct {
	ID        int64
	UserID    int64
	Status    OrderStatus
	Items     []OrderItem
	CreatedAt time.Time
	UpdatedAt time.Time

	// Owner is the profile resolved from the user service when the order is
	// served over the API. It is never persisted with the order.
	Owner *UserProfile
}

// TotalAmount is the sum of price times quantity over all line items.
func (o *Order) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// OrderFilter narrows order listings. Nil fields are ignored; present fields
// are combined with logical AND.
type OrderFilter struct {
	IDs      []int64
	Statuses []OrderStatus
	UserID   *int64
}
