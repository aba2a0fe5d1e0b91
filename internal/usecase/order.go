package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/omnicart/fulfillment/internal/adapter/userclient"
	domainErrors "github.com/omnicart/fulfillment/internal/domain/errors"
	"github.com/omnicart/fulfillment/internal/domain/model"
	"github.com/omnicart/fulfillment/internal/domain/repository"
	"github.com/omnicart/fulfillment/internal/event"
	"github.com/omnicart/fulfillment/internal/pkg/identity"
)

// OrderUseCase covers the order lifecycle: the API surface callers reach
// through HTTP and the saga reactions driven by payment events.
type OrderUseCase interface {
	Create(ctx context.Context, items []model.OrderItem) (*model.Order, error)
	FindByID(ctx context.Context, id int64) (*model.Order, error)
	FindAll(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)
	Update(ctx context.Context, id int64, status model.OrderStatus) (*model.Order, error)
	Delete(ctx context.Context, id int64) error

	ProcessPaymentCreation(ctx context.Context, eventID string, ev event.PaymentCreated) error
	ProcessPaymentUpdate(ctx context.Context, eventID string, ev event.PaymentStatusUpdated) error
}

type orderUseCase struct {
	orders        repository.OrderRepository
	users         userclient.Client
	publisher     event.Publisher
	consumerGroup string
	logger        *slog.Logger
}

// NewOrderUseCase creates the order use case.
func NewOrderUseCase(
	orders repository.OrderRepository,
	users userclient.Client,
	publisher event.Publisher,
	consumerGroup string,
	logger *slog.Logger,
) OrderUseCase {
	return &orderUseCase{
		orders:        orders,
		users:         users,
		publisher:     publisher,
		consumerGroup: consumerGroup,
		logger:        logger,
	}
}

// Create validates the items, confirms the calling user exists and stores a
// NEW order, then announces it on the order topic to start payment.
func (uc *orderUseCase) Create(ctx context.Context, items []model.OrderItem) (*model.Order, error) {
	caller, err := identity.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateItems(items); err != nil {
		return nil, err
	}

	profile, err := uc.users.FindByID(ctx, caller.ProfileID, caller.Bearer)
	if err != nil {
		return nil, fmt.Errorf("resolve order owner: %w", err)
	}

	order := &model.Order{
		UserID: profile.ID,
		Status: model.OrderStatusNew,
		Items:  items,
	}
	created, err := uc.orders.Create(ctx, order)
	if err != nil {
		return nil, err
	}

	payload := event.FromOrder(created)
	env, err := event.New(event.KindOrderCreated, payload)
	if err != nil {
		return nil, err
	}
	if err := uc.publisher.Publish(ctx, payload.Key(), env); err != nil {
		uc.logger.Error("order created but announcement failed",
			"order_id", created.ID, "error", err)
		return nil, fmt.Errorf("announce order %d: %w", created.ID, err)
	}

	created.Owner = profile
	uc.logger.Info("order created", "order_id", created.ID, "user_id", created.UserID)
	return created, nil
}

// FindByID returns the order, with its owner profile resolved over the user
// service, if the caller manages orders or owns this one.
func (uc *orderUseCase) FindByID(ctx context.Context, id int64) (*model.Order, error) {
	caller, err := identity.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	if !isManager(caller) {
		ownerID, err := uc.orders.GetOwnerID(ctx, id)
		if err != nil {
			return nil, err
		}
		if !caller.OwnsProfile(ownerID) {
			return nil, domainErrors.ErrAuthorizationDenied
		}
	}
	order, err := uc.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Owner, err = uc.users.FindByID(ctx, order.UserID, caller.Bearer); err != nil {
		return nil, fmt.Errorf("resolve order owner: %w", err)
	}
	return order, nil
}

// FindAll lists orders matching the filter. Callers without a manager role
// must filter by their own user id; a foreign or absent userId filter is
// denied, never silently narrowed.
func (uc *orderUseCase) FindAll(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	caller, err := identity.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	for _, status := range filter.Statuses {
		if !status.Valid() {
			return nil, domainErrors.Validation("statuses", fmt.Sprintf("unknown status %q", status))
		}
	}
	if !isManager(caller) {
		if filter.UserID == nil || !caller.OwnsProfile(*filter.UserID) {
			return nil, domainErrors.ErrAuthorizationDenied
		}
	}

	result, err := uc.orders.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	profiles := make(map[int64]*model.UserProfile)
	for i := range result {
		profile, ok := profiles[result[i].UserID]
		if !ok {
			if profile, err = uc.users.FindByID(ctx, result[i].UserID, caller.Bearer); err != nil {
				return nil, fmt.Errorf("resolve order owner: %w", err)
			}
			profiles[result[i].UserID] = profile
		}
		result[i].Owner = profile
	}
	return result, nil
}

// Update sets an order status directly. Reserved for managers; it bypasses
// the saga transition rules so operators can correct stuck orders.
func (uc *orderUseCase) Update(ctx context.Context, id int64, status model.OrderStatus) (*model.Order, error) {
	caller, err := identity.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	if !isManager(caller) {
		return nil, domainErrors.ErrAuthorizationDenied
	}
	if !status.Valid() {
		return nil, domainErrors.Validation("status", fmt.Sprintf("unknown status %q", status))
	}
	updated, err := uc.orders.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	if updated.Owner, err = uc.users.FindByID(ctx, updated.UserID, caller.Bearer); err != nil {
		return nil, fmt.Errorf("resolve order owner: %w", err)
	}
	uc.logger.Info("order status overridden",
		"order_id", id, "status", status, "manager_id", caller.ProfileID)
	return updated, nil
}

// Delete removes an order. Reserved for managers.
func (uc *orderUseCase) Delete(ctx context.Context, id int64) error {
	caller, err := identity.FromContext(ctx)
	if err != nil {
		return err
	}
	if !isManager(caller) {
		return domainErrors.ErrAuthorizationDenied
	}
	if err := uc.orders.Delete(ctx, id); err != nil {
		return err
	}
	uc.logger.Info("order deleted", "order_id", id, "manager_id", caller.ProfileID)
	return nil
}

// ProcessPaymentCreation moves the order to PROCESSING when its payment
// appears. The dedup record and the transition commit atomically, so a
// redelivered event is a no-op.
func (uc *orderUseCase) ProcessPaymentCreation(ctx context.Context, eventID string, ev event.PaymentCreated) error {
	applied, err := uc.orders.ProcessEventOnce(ctx, uc.consumerGroup, eventID,
		func(ctx context.Context, tx repository.OrderTx) error {
			order, err := tx.GetByID(ctx, ev.OrderID)
			if errors.Is(err, domainErrors.ErrNotFound) {
				uc.logger.Warn("payment created for unknown order",
					"order_id", ev.OrderID, "payment_id", ev.PaymentID)
				return nil
			}
			if err != nil {
				return err
			}
			if !order.Status.CanTransition(model.OrderStatusProcessing) {
				uc.logger.Warn("ignoring stale payment creation",
					"order_id", ev.OrderID, "status", order.Status)
				return nil
			}
			return tx.UpdateStatus(ctx, ev.OrderID, model.OrderStatusProcessing)
		})
	if err != nil {
		return err
	}
	if !applied {
		uc.logger.Debug("duplicate payment creation skipped", "event_id", eventID)
		return nil
	}
	uc.logger.Info("order processing", "order_id", ev.OrderID, "payment_id", ev.PaymentID)
	return nil
}

// ProcessPaymentUpdate reacts to the payment outcome. A successful payment
// moves the order on to DELIVERING. A failed payment is recorded in the log
// only; the order stays in PROCESSING until an operator resolves it.
func (uc *orderUseCase) ProcessPaymentUpdate(ctx context.Context, eventID string, ev event.PaymentStatusUpdated) error {
	applied, err := uc.orders.ProcessEventOnce(ctx, uc.consumerGroup, eventID,
		func(ctx context.Context, tx repository.OrderTx) error {
			switch ev.NewStatus {
			case model.PaymentStatusSucceeded:
				order, err := tx.GetByID(ctx, ev.OrderID)
				if errors.Is(err, domainErrors.ErrNotFound) {
					uc.logger.Warn("payment settled for unknown order",
						"order_id", ev.OrderID, "payment_id", ev.PaymentID)
					return nil
				}
				if err != nil {
					return err
				}
				if !order.Status.CanTransition(model.OrderStatusDelivering) {
					uc.logger.Warn("ignoring stale payment outcome",
						"order_id", ev.OrderID, "status", order.Status)
					return nil
				}
				return tx.UpdateStatus(ctx, ev.OrderID, model.OrderStatusDelivering)
			case model.PaymentStatusFailed:
				uc.logger.Error("payment failed, order needs attention",
					"order_id", ev.OrderID, "payment_id", ev.PaymentID)
				return nil
			default:
				uc.logger.Debug("payment status noted",
					"order_id", ev.OrderID, "status", ev.NewStatus)
				return nil
			}
		})
	if err != nil {
		return err
	}
	if !applied {
		uc.logger.Debug("duplicate payment update skipped", "event_id", eventID)
	}
	return nil
}

func isManager(id identity.Identity) bool {
	return id.HasRole(model.RoleManager) ||
		id.HasRole(model.RoleAdmin) ||
		id.HasRole(model.RoleSuperAdmin)
}

// validateItems reports the first violation only, checking presence before
// format.
func validateItems(items []model.OrderItem) error {
	if len(items) == 0 {
		return domainErrors.Validation("items", "order must contain at least one item")
	}
	for i, item := range items {
		field := func(name string) string { return fmt.Sprintf("items[%d].%s", i, name) }
		if item.ItemID <= 0 {
			return domainErrors.Validation(field("itemId"), "item id is required")
		}
		if item.Name == "" {
			return domainErrors.Validation(field("name"), "name is required")
		}
		if item.Quantity <= 0 {
			return domainErrors.Validation(field("quantity"), "quantity must be positive")
		}
		if !item.Price.IsPositive() {
			return domainErrors.Validation(field("price"), "price must be positive")
		}
	}
	return nil
}
