package handlers

import (
	"context"

	"github.com/omnicart/fulfillment/internal/domain/model"
)

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	CreateOrder(ctx context.Context, items []model.OrderItem) (*model.Order, error)
	Order(ctx context.Context, id int64) (*model.Order, error)
	Orders(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)
	UpdateOrder(ctx context.Context, id int64, status model.OrderStatus) (*model.Order, error)
	DeleteOrder(ctx context.Context, id int64) error
}

// ItemFacade encapsulates catalog reads exposed via HTTP.
type ItemFacade interface {
	Items(ctx context.Context) ([]model.Item, error)
	Item(ctx context.Context, id int64) (*model.Item, error)
}

// HealthFacade reports readiness of the backing dependencies.
type HealthFacade interface {
	HealthCheck(ctx context.Context) error
}

// ServiceFacade aggregates the full set of operations used across handlers.
type ServiceFacade interface {
	OrderFacade
	ItemFacade
	HealthFacade
}
