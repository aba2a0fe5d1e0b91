package repository

import (
	"context"

	"github.com/omnicart/fulfillment/internal/domain/model"
)

// OrderTx is the slice of order persistence available inside an idempotent
// event-processing unit.
type OrderTx interface {
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	UpdateStatus(ctx context.Context, id int64, status model.OrderStatus) error
}

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) (*model.Order, error)
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	GetOwnerID(ctx context.Context, id int64) (int64, error)
	List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)
	UpdateStatus(ctx context.Context, id int64, status model.OrderStatus) (*model.Order, error)
	Delete(ctx context.Context, id int64) error

	// ProcessEventOnce runs apply together with the dedup check-and-set for
	// (consumerGroup, eventID) inside a single transaction. It returns false
	// without invoking apply when the event was already processed, so a
	// redelivered event can never double-apply a transition.
	ProcessEventOnce(ctx context.Context, consumerGroup, eventID string, apply func(ctx context.Context, tx OrderTx) error) (bool, error)
}
