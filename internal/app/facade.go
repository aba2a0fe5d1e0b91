package app

import (
	"context"

	"github.com/omnicart/fulfillment/internal/domain/model"
	"github.com/omnicart/fulfillment/internal/usecase"
)

// HealthChecker reports readiness of a backing dependency.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// FulfillmentFacade exposes the order service operations to the HTTP layer.
type FulfillmentFacade struct {
	orders usecase.OrderUseCase
	items  usecase.ItemUseCase
	health HealthChecker
}

// NewFulfillmentFacade constructs the facade.
func NewFulfillmentFacade(orders usecase.OrderUseCase, items usecase.ItemUseCase, health HealthChecker) *FulfillmentFacade {
	return &FulfillmentFacade{orders: orders, items: items, health: health}
}

func (f *FulfillmentFacade) CreateOrder(ctx context.Context, items []model.OrderItem) (*model.Order, error) {
	return f.orders.Create(ctx, items)
}

func (f *FulfillmentFacade) Order(ctx context.Context, id int64) (*model.Order, error) {
	return f.orders.FindByID(ctx, id)
}

func (f *FulfillmentFacade) Orders(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	return f.orders.FindAll(ctx, filter)
}

func (f *FulfillmentFacade) UpdateOrder(ctx context.Context, id int64, status model.OrderStatus) (*model.Order, error) {
	return f.orders.Update(ctx, id, status)
}

func (f *FulfillmentFacade) DeleteOrder(ctx context.Context, id int64) error {
	return f.orders.Delete(ctx, id)
}

func (f *FulfillmentFacade) Items(ctx context.Context) ([]model.Item, error) {
	return f.items.Items(ctx)
}

func (f *FulfillmentFacade) Item(ctx context.Context, id int64) (*model.Item, error) {
	return f.items.Item(ctx, id)
}

func (f *FulfillmentFacade) HealthCheck(ctx context.Context) error {
	return f.health.HealthCheck(ctx)
}
