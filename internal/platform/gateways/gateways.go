package gateways

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/pledger/internal/gateway"
	"github.com/fatflowers/pledger/internal/gateway/authorize"
	"github.com/fatflowers/pledger/internal/gateway/plaid"
	"github.com/fatflowers/pledger/internal/gateway/square"
	"github.com/fatflowers/pledger/pkg/config"
)

// NewRegistry assembles the gateway registry from configuration. Adapters
// without credentials are skipped, so a deployment runs with exactly the
// gateways it is provisioned for.
func NewRegistry(cfg *config.Config, log *zap.SugaredLogger) *gateway.Registry {
	registry := gateway.NewRegistry(log)
	if cfg.Authorize.Configured() {
		registry.Register(authorize.New(log, cfg.Authorize, cfg.Sandbox))
	}
	if cfg.Square.Configured() {
		registry.Register(square.New(log, cfg.Square, cfg.Sandbox))
	}
	if cfg.Plaid.Configured() {
		registry.Register(plaid.New(log, cfg.Plaid, cfg.Sandbox))
	}
	if len(registry.IDs()) == 0 {
		log.Warn("no payment gateway is configured")
	}
	return registry
}

var Module = fx.Options(
	fx.Provide(NewRegistry),
)
