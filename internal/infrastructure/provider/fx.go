package provider

import (
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/HoceineEl/madrasa-messaging/config"
	dispatchdeps "github.com/HoceineEl/madrasa-messaging/internal/domain/dispatch/deps"
	sessiondeps "github.com/HoceineEl/madrasa-messaging/internal/domain/session/deps"
	"github.com/HoceineEl/madrasa-messaging/internal/infrastructure/metrics"
)

// ClientResult exposes the single provider client under both of the
// interfaces the domains consume it through.
type ClientResult struct {
	fx.Out

	ProviderClient sessiondeps.ProviderClient
	MessageSender  dispatchdeps.MessageSender
}

// NewClientFx creates the provider client for dependency injection
func NewClientFx(cfg *config.ProviderConfig, logger zerolog.Logger, m *metrics.Metrics) ClientResult {
	client := NewClient(cfg, logger, m)
	return ClientResult{
		ProviderClient: client,
		MessageSender:  client,
	}
}

// Module provides the provider client
var Module = fx.Module("provider",
	fx.Provide(NewClientFx),
)
