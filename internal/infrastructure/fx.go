package infrastructure

import (
	"go.uber.org/fx"

	"github.com/HoceineEl/madrasa-messaging/internal/infrastructure/cache"
	"github.com/HoceineEl/madrasa-messaging/internal/infrastructure/database"
	httpfx "github.com/HoceineEl/madrasa-messaging/internal/infrastructure/http"
	"github.com/HoceineEl/madrasa-messaging/internal/infrastructure/kafka"
	"github.com/HoceineEl/madrasa-messaging/internal/infrastructure/logger"
	"github.com/HoceineEl/madrasa-messaging/internal/infrastructure/metrics"
	"github.com/HoceineEl/madrasa-messaging/internal/infrastructure/provider"
	pkgerrors "github.com/HoceineEl/madrasa-messaging/pkg/errors"
)

// Module aggregates all infrastructure modules
var Module = fx.Module("infrastructure",
	logger.Module,
	database.Module,
	metrics.Module,
	cache.Module,
	kafka.Module,
	provider.Module,
	httpfx.Module,
	fx.Provide(pkgerrors.NewMapper),
)
