package redisdedup

import (
	"context"

	"go.uber.org/fx"

	"github.com/omnicart/fulfillment/internal/config"
	"github.com/omnicart/fulfillment/internal/domain/repository"
)

// Module wires the Redis-backed processed-event store.
var Module = fx.Options(
	fx.Provide(func(cfg *config.Config) *Store { return New(cfg.RedisAddress) }),
	fx.Provide(func(s *Store) repository.ProcessedEventRepository { return s }),
	fx.Invoke(registerLifecycle),
)

func registerLifecycle(lc fx.Lifecycle, store *Store) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return store.HealthCheck(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return store.Close()
		},
	})
}
