package mongo

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/omnicart/fulfillment/internal/config"
	"github.com/omnicart/fulfillment/internal/domain/repository"
)

// Module wires MongoDB storage and the payment repository adapter.
var Module = fx.Options(
	fx.Provide(newStorage),
	fx.Provide(func(s *Storage) repository.PaymentRepository { return s.Payments() }),
	fx.Invoke(registerLifecycle),
)

type storageParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

func newStorage(p storageParams) (*Storage, error) {
	return New(p.Ctx, p.Config.MongoURI, p.Config.MongoDatabase, p.Logger)
}

func registerLifecycle(lc fx.Lifecycle, storage *Storage) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return storage.Close(ctx)
		},
	})
}
