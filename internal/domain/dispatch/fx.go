package dispatch

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/HoceineEl/madrasa-messaging/config"
	dispatchhttp "github.com/HoceineEl/madrasa-messaging/internal/domain/dispatch/delivery/http"
	"github.com/HoceineEl/madrasa-messaging/internal/domain/dispatch/deps"
	"github.com/HoceineEl/madrasa-messaging/internal/domain/dispatch/repository/postgres"
	"github.com/HoceineEl/madrasa-messaging/internal/domain/dispatch/usecase/business"
	"github.com/HoceineEl/madrasa-messaging/internal/domain/dispatch/workers"
	sessiondeps "github.com/HoceineEl/madrasa-messaging/internal/domain/session/deps"
	"github.com/HoceineEl/madrasa-messaging/internal/infrastructure/http/server"
	"github.com/HoceineEl/madrasa-messaging/internal/infrastructure/metrics"
	"github.com/HoceineEl/madrasa-messaging/internal/phone"
	pkgerrors "github.com/HoceineEl/madrasa-messaging/pkg/errors"
)

// Module provides dispatch components for fx DI
var Module = fx.Module("dispatch",
	fx.Provide(NewMessageRepositoryFx),
	fx.Provide(NewNormalizerFx),
	fx.Provide(NewDispatcherFx),
	fx.Provide(NewDispatchUseCaseFx),
	fx.Provide(NewDispatchHandlerFx),
	fx.Provide(NewDispatchRouterFx),
	fx.Invoke(RegisterRoutes),
)

// NewMessageRepositoryFx creates the message repository for fx DI
func NewMessageRepositoryFx(db *gorm.DB) deps.MessageRepository {
	return postgres.NewRepository(db)
}

// NewNormalizerFx creates the phone normalizer from config for fx DI
func NewNormalizerFx(phoneCfg *config.PhoneConfig) *phone.Normalizer {
	return phone.NewNormalizer(phoneCfg.CountryCode, []byte(phoneCfg.MobilePrefixes), phoneCfg.NSNLength)
}

// NewDispatcherFx creates the bounded worker pool for fx DI
func NewDispatcherFx(
	lc fx.Lifecycle,
	repo deps.MessageRepository,
	sender deps.MessageSender,
	publisher deps.EventPublisher,
	dispatchCfg *config.DispatchConfig,
	logger zerolog.Logger,
	m *metrics.Metrics,
) deps.Dispatcher {
	d := workers.NewDispatcher(repo, sender, publisher, dispatchCfg.Workers, dispatchCfg.QueueSize, logger, m)

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			d.Stop()
			return nil
		},
	})

	return d
}

// NewDispatchUseCaseFx creates the dispatch use case for fx DI
func NewDispatchUseCaseFx(
	repo deps.MessageRepository,
	dispatcher deps.Dispatcher,
	sessions sessiondeps.SessionService,
	normalizer *phone.Normalizer,
	logger zerolog.Logger,
	m *metrics.Metrics,
) deps.DispatchService {
	// No sent hook by default. The surrounding application injects one
	// when it wants attendance sends recorded on confirmation.
	return business.NewUseCase(repo, dispatcher, sessions, normalizer, nil, logger, m)
}

// NewDispatchHandlerFx creates the dispatch handler for fx DI
func NewDispatchHandlerFx(useCase deps.DispatchService, mapper *pkgerrors.Mapper, logger zerolog.Logger) *dispatchhttp.DispatchHandler {
	return dispatchhttp.NewDispatchHandler(useCase, mapper, logger)
}

// NewDispatchRouterFx creates the dispatch router for fx DI
func NewDispatchRouterFx(handler *dispatchhttp.DispatchHandler, logger zerolog.Logger) *dispatchhttp.Router {
	return dispatchhttp.NewRouter(handler, logger)
}

// RegisterRoutes registers dispatch routes on the server
func RegisterRoutes(srv *server.Server, router *dispatchhttp.Router) {
	router.RegisterRoutes(srv.Router)
}
