package token

import (
	"go.uber.org/fx"

	"github.com/omnicart/fulfillment/internal/config"
)

// Module provides token verification and issuing via fx.
var Module = fx.Options(
	fx.Provide(newStrategy),
	fx.Provide(func(s *JWTStrategy) Verifier { return s }),
	fx.Provide(func(s *JWTStrategy) Issuer { return s }),
)

type strategyParams struct {
	fx.In

	Config *config.Config
}

func newStrategy(p strategyParams) *JWTStrategy {
	return NewJWTStrategy(
		p.Config.ServiceName,
		p.Config.JWTAccessSecret,
		p.Config.JWTRefreshSecret,
		Options{},
	)
}
