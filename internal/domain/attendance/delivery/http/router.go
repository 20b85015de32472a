package http

import (
	"github.com/fasthttp/router"
	"github.com/rs/zerolog"
)

// Router registers attendance routes
type Router struct {
	handler *AttendanceHandler
	logger  zerolog.Logger
}

// NewRouter creates a new attendance router
func NewRouter(handler *AttendanceHandler, logger zerolog.Logger) *Router {
	return &Router{handler: handler, logger: logger}
}

// RegisterRoutes registers attendance routes on the given router
func (r *Router) RegisterRoutes(rt *router.Router) {
	rt.POST("/api/v1/attendance/reconcile", r.handler.Reconcile)

	r.logger.Info().Msg("attendance routes registered")
}
