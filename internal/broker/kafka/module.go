package kafka

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/omnicart/fulfillment/internal/config"
	"github.com/omnicart/fulfillment/internal/event"
)

// OrderPublisherModule provides a publisher bound to the order topic.
var OrderPublisherModule = publisherModule(func(cfg *config.Config) string { return cfg.OrderTopic })

// PaymentPublisherModule provides a publisher bound to the payment topic.
var PaymentPublisherModule = publisherModule(func(cfg *config.Config) string { return cfg.PaymentTopic })

func publisherModule(topicOf func(*config.Config) string) fx.Option {
	return fx.Options(
		fx.Provide(func(cfg *config.Config, logger *slog.Logger) *Publisher {
			return NewPublisher(cfg.KafkaBrokers, topicOf(cfg), logger)
		}),
		fx.Provide(func(p *Publisher) event.Publisher { return p }),
		fx.Invoke(func(lc fx.Lifecycle, p *Publisher) {
			lc.Append(fx.Hook{
				OnStop: func(ctx context.Context) error {
					return p.Close()
				},
			})
		}),
	)
}
