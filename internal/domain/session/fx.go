package session

import (
	"github.com/rs/zerolog"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/HoceineEl/madrasa-messaging/config"
	sessionhttp "github.com/HoceineEl/madrasa-messaging/internal/domain/session/delivery/http"
	"github.com/HoceineEl/madrasa-messaging/internal/domain/session/deps"
	"github.com/HoceineEl/madrasa-messaging/internal/domain/session/repository/postgres"
	"github.com/HoceineEl/madrasa-messaging/internal/domain/session/usecase/business"
	"github.com/HoceineEl/madrasa-messaging/internal/infrastructure/http/server"
	"github.com/HoceineEl/madrasa-messaging/internal/infrastructure/metrics"
	pkgerrors "github.com/HoceineEl/madrasa-messaging/pkg/errors"
)

// Module provides session components for fx DI
var Module = fx.Module("session",
	fx.Provide(NewSessionRepositoryFx),
	fx.Provide(NewSessionUseCaseFx),
	fx.Provide(NewSessionHandlerFx),
	fx.Provide(NewSessionRouterFx),
	fx.Invoke(RegisterRoutes),
)

// NewSessionRepositoryFx creates the session repository for fx DI
func NewSessionRepositoryFx(db *gorm.DB) deps.SessionRepository {
	return postgres.NewRepository(db)
}

// NewSessionUseCaseFx creates the session use case for fx DI
func NewSessionUseCaseFx(
	repo deps.SessionRepository,
	provider deps.ProviderClient,
	tokenCache deps.TokenCache,
	redisCfg *config.RedisConfig,
	logger zerolog.Logger,
	m *metrics.Metrics,
) deps.SessionService {
	return business.NewUseCase(repo, provider, tokenCache, redisCfg.TokenTTL, logger, m)
}

// NewSessionHandlerFx creates the session handler for fx DI
func NewSessionHandlerFx(useCase deps.SessionService, mapper *pkgerrors.Mapper, logger zerolog.Logger) *sessionhttp.SessionHandler {
	return sessionhttp.NewSessionHandler(useCase, mapper, logger)
}

// NewSessionRouterFx creates the session router for fx DI
func NewSessionRouterFx(handler *sessionhttp.SessionHandler, logger zerolog.Logger) *sessionhttp.Router {
	return sessionhttp.NewRouter(handler, logger)
}

// RegisterRoutes registers session routes on the server
func RegisterRoutes(srv *server.Server, router *sessionhttp.Router) {
	router.RegisterRoutes(srv.Router)
}
