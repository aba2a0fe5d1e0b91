package consumer

import (
	"context"
	"log/slog"

	"github.com/omnicart/fulfillment/internal/domain/repository"
	"github.com/omnicart/fulfillment/internal/event"
	"github.com/omnicart/fulfillment/internal/usecase"
)

// PaymentListener consumes the payment topic on the order service side and
// advances orders through the saga.
type PaymentListener struct {
	orders usecase.OrderUseCase
	events repository.ProcessedEventRepository
	group  string
	logger *slog.Logger
}

// NewPaymentListener creates the listener.
func NewPaymentListener(
	orders usecase.OrderUseCase,
	events repository.ProcessedEventRepository,
	group string,
	logger *slog.Logger,
) *PaymentListener {
	return &PaymentListener{orders: orders, events: events, group: group, logger: logger}
}

// Handle dispatches a payment event. A cheap dedup lookup skips known
// duplicates early; the transactional check inside the use case remains the
// authoritative one.
func (l *PaymentListener) Handle(ctx context.Context, env event.Envelope) error {
	seen, err := l.events.IsProcessed(ctx, l.group, env.EventID)
	if err != nil {
		l.logger.Warn("dedup lookup failed, processing anyway",
			"event_id", env.EventID, "error", err)
	} else if seen {
		l.logger.Debug("duplicate event skipped", "event_id", env.EventID)
		return nil
	}

	switch env.Kind {
	case event.KindPaymentCreated:
		var ev event.PaymentCreated
		if err := env.Decode(&ev); err != nil {
			l.logger.Error("malformed payment creation event",
				"event_id", env.EventID, "error", err)
			return nil
		}
		return l.orders.ProcessPaymentCreation(ctx, env.EventID, ev)
	case event.KindPaymentStatusUpdated:
		var ev event.PaymentStatusUpdated
		if err := env.Decode(&ev); err != nil {
			l.logger.Error("malformed payment update event",
				"event_id", env.EventID, "error", err)
			return nil
		}
		return l.orders.ProcessPaymentUpdate(ctx, env.EventID, ev)
	default:
		l.logger.Debug("unexpected event kind ignored",
			"type", string(env.Kind), "event_id", env.EventID)
		return nil
	}
}
