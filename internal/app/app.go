package app

import (
	"go.uber.org/fx"

	"github.com/HoceineEl/madrasa-messaging/config"
	"github.com/HoceineEl/madrasa-messaging/internal/domain/attendance"
	"github.com/HoceineEl/madrasa-messaging/internal/domain/dispatch"
	"github.com/HoceineEl/madrasa-messaging/internal/domain/session"
	"github.com/HoceineEl/madrasa-messaging/internal/infrastructure"
)

// CreateApp creates the fx application options
func CreateApp() fx.Option {
	return fx.Options(
		fx.Provide(
			config.Out,
		),
		infrastructure.Module,
		// Domain modules
		session.Module,
		dispatch.Module, // Must be after session.Module (depends on SessionService)
		attendance.Module,
	)
}
