package processor

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/omnicart/fulfillment/internal/config"
	"github.com/omnicart/fulfillment/internal/pkg/resilience"
)

// Module exposes the settlement processor client to the fx graph.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (Client, error) {
	return NewHTTPClient(p.Config.ProcessorAddress, resilience.Policy{
		Timeout:        p.Config.ClientTimeout,
		MaxRetries:     p.Config.ClientRetries,
		BreakerOpenFor: p.Config.BreakerOpenFor,
	}, p.Logger)
}
