package http

import (
	"github.com/fasthttp/router"
	"github.com/rs/zerolog"
)

// Router registers dispatch routes
type Router struct {
	handler *DispatchHandler
	logger  zerolog.Logger
}

// NewRouter creates a new dispatch router
func NewRouter(handler *DispatchHandler, logger zerolog.Logger) *Router {
	return &Router{handler: handler, logger: logger}
}

// RegisterRoutes registers dispatch routes on the given router
func (r *Router) RegisterRoutes(rt *router.Router) {
	rt.POST("/api/v1/messages/batch", r.handler.SendBatch)
	rt.POST("/api/v1/messages/{id}/retry", r.handler.Retry)
	rt.POST("/api/v1/messages/{id}/cancel", r.handler.Cancel)
	rt.GET("/api/v1/messages", r.handler.History)

	r.logger.Info().Msg("dispatch routes registered")
}
