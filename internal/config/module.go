package config

import "go.uber.org/fx"

// Module exposes the configuration loader for the given service to fx graphs.
func Module(svc Service) fx.Option {
	return fx.Provide(func() (*Config, error) { return Load(svc) })
}
