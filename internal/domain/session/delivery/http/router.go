package http

import (
	"github.com/fasthttp/router"
	"github.com/rs/zerolog"
)

// Router registers session routes
type Router struct {
	handler *SessionHandler
	logger  zerolog.Logger
}

// NewRouter creates a new session router
func NewRouter(handler *SessionHandler, logger zerolog.Logger) *Router {
	return &Router{handler: handler, logger: logger}
}

// RegisterRoutes registers session routes on the given router
func (r *Router) RegisterRoutes(rt *router.Router) {
	rt.POST("/api/v1/sessions/start", r.handler.Start)
	rt.GET("/api/v1/sessions/status", r.handler.Status)
	rt.POST("/api/v1/sessions/qr/refresh", r.handler.RefreshQR)
	rt.POST("/api/v1/sessions/logout", r.handler.Logout)
	rt.DELETE("/api/v1/sessions", r.handler.Delete)

	r.logger.Info().Msg("session routes registered")
}
