package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/omnicart/fulfillment/internal/adapter/processor"
	domainErrors "github.com/omnicart/fulfillment/internal/domain/errors"
	"github.com/omnicart/fulfillment/internal/domain/model"
	"github.com/omnicart/fulfillment/internal/domain/repository"
	"github.com/omnicart/fulfillment/internal/event"
)

// PaymentUseCase drives a payment from creation through settlement for each
// announced order.
type PaymentUseCase interface {
	ProcessOrderCreation(ctx context.Context, eventID string, ev event.OrderCreated) error
	FindByOrderID(ctx context.Context, orderID int64) (*model.Payment, error)
}

type paymentUseCase struct {
	payments      repository.PaymentRepository
	events        repository.ProcessedEventRepository
	processor     processor.Client
	publisher     event.Publisher
	consumerGroup string
	logger        *slog.Logger
	now           func() time.Time
}

// NewPaymentUseCase creates the payment use case.
func NewPaymentUseCase(
	payments repository.PaymentRepository,
	events repository.ProcessedEventRepository,
	proc processor.Client,
	publisher event.Publisher,
	consumerGroup string,
	logger *slog.Logger,
) PaymentUseCase {
	return &paymentUseCase{
		payments:      payments,
		events:        events,
		processor:     proc,
		publisher:     publisher,
		consumerGroup: consumerGroup,
		logger:        logger,
		now:           time.Now,
	}
}

// ProcessOrderCreation handles one order announcement: create the payment,
// settle it, record the event as processed. The dedup mark is written last,
// so a crash mid-way leads to a retried (and idempotent) run rather than a
// lost payment.
func (uc *paymentUseCase) ProcessOrderCreation(ctx context.Context, eventID string, ev event.OrderCreated) error {
	processed, err := uc.events.IsProcessed(ctx, uc.consumerGroup, eventID)
	if err != nil {
		return fmt.Errorf("check event %s: %w", eventID, err)
	}
	if processed {
		uc.logger.Debug("duplicate order announcement skipped", "event_id", eventID)
		return nil
	}

	payment, err := uc.createFromOrder(ctx, ev)
	if err != nil {
		return err
	}
	if !payment.Status.Terminal() {
		if err := uc.settle(ctx, payment); err != nil {
			return err
		}
	}

	return uc.events.MarkProcessed(ctx, uc.consumerGroup, eventID)
}

// FindByOrderID returns the payment attached to an order.
func (uc *paymentUseCase) FindByOrderID(ctx context.Context, orderID int64) (*model.Payment, error) {
	return uc.payments.GetByOrderID(ctx, orderID)
}

// createFromOrder stores a PENDING payment for the order and announces it.
// A second run for the same order picks up the existing payment instead of
// creating another one.
func (uc *paymentUseCase) createFromOrder(ctx context.Context, ev event.OrderCreated) (*model.Payment, error) {
	amount := decimal.Zero
	for _, item := range ev.Items {
		amount = amount.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	payment := &model.Payment{
		ID:        uuid.NewString(),
		OrderID:   ev.OrderID,
		UserID:    ev.UserID,
		Status:    model.PaymentStatusPending,
		Amount:    amount,
		CreatedAt: uc.now().UTC(),
	}
	created, err := uc.payments.Create(ctx, payment)
	if errors.Is(err, domainErrors.ErrAlreadyExists) {
		existing, err := uc.payments.GetByOrderID(ctx, ev.OrderID)
		if err != nil {
			return nil, err
		}
		uc.logger.Info("payment already exists for order",
			"order_id", ev.OrderID, "payment_id", existing.ID, "status", existing.Status)
		return existing, nil
	}
	if err != nil {
		return nil, err
	}

	payload := event.FromPayment(created)
	env, err := event.New(event.KindPaymentCreated, payload)
	if err != nil {
		return nil, err
	}
	if err := uc.publisher.Publish(ctx, payload.Key(), env); err != nil {
		return nil, fmt.Errorf("announce payment %s: %w", created.ID, err)
	}

	uc.logger.Info("payment created",
		"payment_id", created.ID, "order_id", created.OrderID, "amount", created.Amount)
	return created, nil
}

// settle runs the payment through the processor. Settlement fails closed: a
// definitive success from the processor is the only path to SUCCEEDED, any
// error marks the payment FAILED.
func (uc *paymentUseCase) settle(ctx context.Context, payment *model.Payment) error {
	if err := uc.transition(ctx, payment, model.PaymentStatusProcessing); err != nil {
		return err
	}

	outcome, err := uc.processor.Settle(ctx)
	if err != nil {
		uc.logger.Error("settlement did not complete, failing payment",
			"payment_id", payment.ID, "order_id", payment.OrderID, "error", err)
		outcome = model.PaymentStatusFailed
	}

	return uc.transition(ctx, payment, outcome)
}

// transition advances the payment and announces the change with both the
// previous and the new status.
func (uc *paymentUseCase) transition(ctx context.Context, payment *model.Payment, next model.PaymentStatus) error {
	if !payment.Status.CanTransition(next) {
		uc.logger.Warn("payment transition skipped",
			"payment_id", payment.ID, "from", payment.Status, "to", next)
		return nil
	}
	if err := uc.payments.UpdateStatus(ctx, payment.ID, next); err != nil {
		return fmt.Errorf("update payment %s: %w", payment.ID, err)
	}
	previous := payment.Status
	payment.Status = next

	payload := event.PaymentStatusUpdated{
		PaymentID:      payment.ID,
		OrderID:        payment.OrderID,
		PreviousStatus: previous,
		NewStatus:      next,
	}
	env, err := event.New(event.KindPaymentStatusUpdated, payload)
	if err != nil {
		return err
	}
	if err := uc.publisher.Publish(ctx, payload.Key(), env); err != nil {
		return fmt.Errorf("announce payment %s status: %w", payment.ID, err)
	}

	uc.logger.Info("payment status updated",
		"payment_id", payment.ID, "order_id", payment.OrderID,
		"from", previous, "to", next)
	return nil
}
