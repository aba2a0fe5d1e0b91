package test

import (
	"context"

	"github.com/omnicart/fulfillment/internal/domain/model"
)

// ServiceFacadeStub provides controllable behaviour for HTTP handler tests.
type ServiceFacadeStub struct {
	CreateOrderFn func(context.Context, []model.OrderItem) (*model.Order, error)
	OrderFn       func(context.Context, int64) (*model.Order, error)
	OrdersFn      func(context.Context, model.OrderFilter) ([]model.Order, error)
	UpdateOrderFn func(context.Context, int64, model.OrderStatus) (*model.Order, error)
	DeleteOrderFn func(context.Context, int64) error
	ItemsFn       func(context.Context) ([]model.Item, error)
	ItemFn        func(context.Context, int64) (*model.Item, error)
	HealthFn      func(context.Context) error
}

// CreateOrder delegates to provided function or returns a default order.
func (s ServiceFacadeStub) CreateOrder(ctx context.Context, items []model.OrderItem) (*model.Order, error) {
	if s.CreateOrderFn != nil {
		return s.CreateOrderFn(ctx, items)
	}
	return &model.Order{ID: 1, Status: model.OrderStatusNew, Items: items}, nil
}

// Order returns the preset order for an id.
func (s ServiceFacadeStub) Order(ctx context.Context, id int64) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, id)
	}
	return &model.Order{ID: id, Status: model.OrderStatusNew}, nil
}

// Orders returns predefined orders for the filter.
func (s ServiceFacadeStub) Orders(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, filter)
	}
	return nil, nil
}

// UpdateOrder delegates or echoes the requested change.
func (s ServiceFacadeStub) UpdateOrder(ctx context.Context, id int64, status model.OrderStatus) (*model.Order, error) {
	if s.UpdateOrderFn != nil {
		return s.UpdateOrderFn(ctx, id, status)
	}
	return &model.Order{ID: id, Status: status}, nil
}

// DeleteOrder delegates or succeeds.
func (s ServiceFacadeStub) DeleteOrder(ctx context.Context, id int64) error {
	if s.DeleteOrderFn != nil {
		return s.DeleteOrderFn(ctx, id)
	}
	return nil
}

// Items delegates or returns an empty catalog.
func (s ServiceFacadeStub) Items(ctx context.Context) ([]model.Item, error) {
	if s.ItemsFn != nil {
		return s.ItemsFn(ctx)
	}
	return nil, nil
}

// Item delegates or returns a default catalog entry.
func (s ServiceFacadeStub) Item(ctx context.Context, id int64) (*model.Item, error) {
	if s.ItemFn != nil {
		return s.ItemFn(ctx, id)
	}
	return &model.Item{ID: id, Name: "item"}, nil
}

// HealthCheck delegates or reports healthy.
func (s ServiceFacadeStub) HealthCheck(ctx context.Context) error {
	if s.HealthFn != nil {
		return s.HealthFn(ctx)
	}
	return nil
}
