package consumer

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/omnicart/fulfillment/internal/broker/kafka"
	"github.com/omnicart/fulfillment/internal/config"
	"github.com/omnicart/fulfillment/internal/domain/repository"
	"github.com/omnicart/fulfillment/internal/usecase"
)

// OrderServiceModule runs the payment-topic consumer inside the order
// service.
var OrderServiceModule = fx.Options(
	fx.Provide(newPaymentListener),
	fx.Provide(func(p consumerParams, l *PaymentListener) *kafka.Consumer {
		return kafka.NewConsumer(p.Config.KafkaBrokers, p.Config.PaymentTopic, p.Config.ConsumerGroup, l, p.Logger)
	}),
	fx.Invoke(registerLifecycle),
)

// PaymentServiceModule runs the order-topic consumer inside the payment
// service.
var PaymentServiceModule = fx.Options(
	fx.Provide(newOrderListener),
	fx.Provide(func(p consumerParams, l *OrderListener) *kafka.Consumer {
		return kafka.NewConsumer(p.Config.KafkaBrokers, p.Config.OrderTopic, p.Config.ConsumerGroup, l, p.Logger)
	}),
	fx.Invoke(registerLifecycle),
)

type consumerParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

type paymentListenerParams struct {
	fx.In

	Orders usecase.OrderUseCase
	Events repository.ProcessedEventRepository
	Config *config.Config
	Logger *slog.Logger
}

func newPaymentListener(p paymentListenerParams) *PaymentListener {
	return NewPaymentListener(p.Orders, p.Events, p.Config.ConsumerGroup, p.Logger)
}

func newOrderListener(payments usecase.PaymentUseCase, logger *slog.Logger) *OrderListener {
	return NewOrderListener(payments, logger)
}

func registerLifecycle(lc fx.Lifecycle, consumer *kafka.Consumer) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			consumer.Start(context.WithoutCancel(ctx))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			consumer.Stop()
			return nil
		},
	})
}
