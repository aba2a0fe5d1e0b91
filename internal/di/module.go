package di

import (
	"go.uber.org/fx"

	"github.com/omnicart/fulfillment/internal/adapter/processor"
	"github.com/omnicart/fulfillment/internal/adapter/userclient"
	"github.com/omnicart/fulfillment/internal/app"
	"github.com/omnicart/fulfillment/internal/broker/kafka"
	"github.com/omnicart/fulfillment/internal/config"
	"github.com/omnicart/fulfillment/internal/consumer"
	"github.com/omnicart/fulfillment/internal/logger"
	"github.com/omnicart/fulfillment/internal/pkg/token"
	"github.com/omnicart/fulfillment/internal/server/http/router"
	"github.com/omnicart/fulfillment/internal/storage/mongo"
	"github.com/omnicart/fulfillment/internal/storage/postgres"
	"github.com/omnicart/fulfillment/internal/storage/redisdedup"
	"github.com/omnicart/fulfillment/internal/usecase"
)

// OrderModule assembles the order service graph.
func OrderModule(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module(config.ServiceOrder),
		logger.Module,
		token.Module,
		postgres.Module,
		userclient.Module,
		kafka.OrderPublisherModule,
		usecase.OrderModule,
		consumer.OrderServiceModule,
		router.Module,
		app.OrderModule,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}

// PaymentModule assembles the payment service graph.
func PaymentModule(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module(config.ServicePayment),
		logger.Module,
		mongo.Module,
		redisdedup.Module,
		processor.Module,
		kafka.PaymentPublisherModule,
		usecase.PaymentModule,
		consumer.PaymentServiceModule,
		app.PaymentModule,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
