package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/omnicart/fulfillment/internal/adapter/processor"
	"github.com/omnicart/fulfillment/internal/adapter/userclient"
	"github.com/omnicart/fulfillment/internal/config"
	"github.com/omnicart/fulfillment/internal/domain/repository"
	"github.com/omnicart/fulfillment/internal/event"
)

// OrderModule wires the order-service use cases.
var OrderModule = fx.Options(
	fx.Provide(newOrderUseCase),
	fx.Provide(func(items repository.ItemRepository) ItemUseCase { return NewItemUseCase(items) }),
)

// PaymentModule wires the payment use case for the payment service graph.
var PaymentModule = fx.Provide(newPaymentUseCase)

type orderParams struct {
	fx.In

	Orders    repository.OrderRepository
	Users     userclient.Client
	Publisher event.Publisher
	Config    *config.Config
	Logger    *slog.Logger
}

func newOrderUseCase(p orderParams) OrderUseCase {
	return NewOrderUseCase(p.Orders, p.Users, p.Publisher, p.Config.ConsumerGroup, p.Logger)
}

type paymentParams struct {
	fx.In

	Payments  repository.PaymentRepository
	Events    repository.ProcessedEventRepository
	Processor processor.Client
	Publisher event.Publisher
	Config    *config.Config
	Logger    *slog.Logger
}

func newPaymentUseCase(p paymentParams) PaymentUseCase {
	return NewPaymentUseCase(p.Payments, p.Events, p.Processor, p.Publisher, p.Config.ConsumerGroup, p.Logger)
}
