package consumer

import (
	"context"
	"log/slog"

	"github.com/omnicart/fulfillment/internal/event"
	"github.com/omnicart/fulfillment/internal/usecase"
)

// OrderListener consumes the order topic on the payment service side and
// opens a payment for every announced order.
type OrderListener struct {
	payments usecase.PaymentUseCase
	logger   *slog.Logger
}

// NewOrderListener creates the listener.
func NewOrderListener(payments usecase.PaymentUseCase, logger *slog.Logger) *OrderListener {
	return &OrderListener{payments: payments, logger: logger}
}

// Handle dispatches an order event.
func (l *OrderListener) Handle(ctx context.Context, env event.Envelope) error {
	switch env.Kind {
	case event.KindOrderCreated:
		var ev event.OrderCreated
		if err := env.Decode(&ev); err != nil {
			l.logger.Error("malformed order creation event",
				"event_id", env.EventID, "error", err)
			return nil
		}
		return l.payments.ProcessOrderCreation(ctx, env.EventID, ev)
	default:
		l.logger.Debug("unexpected event kind ignored",
			"type", string(env.Kind), "event_id", env.EventID)
		return nil
	}
}
