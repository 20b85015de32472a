package attendance

import (
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	attendancehttp "github.com/HoceineEl/madrasa-messaging/internal/domain/attendance/delivery/http"
	"github.com/HoceineEl/madrasa-messaging/internal/domain/attendance/deps"
	"github.com/HoceineEl/madrasa-messaging/internal/domain/attendance/usecase/business"
	"github.com/HoceineEl/madrasa-messaging/internal/infrastructure/http/server"
	"github.com/HoceineEl/madrasa-messaging/internal/infrastructure/metrics"
	"github.com/HoceineEl/madrasa-messaging/internal/phone"
	pkgerrors "github.com/HoceineEl/madrasa-messaging/pkg/errors"
)

// Module provides attendance components for fx DI
var Module = fx.Module("attendance",
	fx.Provide(NewAttendanceUseCaseFx),
	fx.Provide(NewAttendanceHandlerFx),
	fx.Provide(NewAttendanceRouterFx),
	fx.Invoke(RegisterRoutes),
)

// NewAttendanceUseCaseFx creates the attendance use case for fx DI
func NewAttendanceUseCaseFx(normalizer *phone.Normalizer, logger zerolog.Logger, m *metrics.Metrics) deps.AttendanceService {
	return business.NewUseCase(normalizer, logger, m)
}

// NewAttendanceHandlerFx creates the attendance handler for fx DI
func NewAttendanceHandlerFx(useCase deps.AttendanceService, mapper *pkgerrors.Mapper, logger zerolog.Logger) *attendancehttp.AttendanceHandler {
	return attendancehttp.NewAttendanceHandler(useCase, mapper, logger)
}

// NewAttendanceRouterFx creates the attendance router for fx DI
func NewAttendanceRouterFx(handler *attendancehttp.AttendanceHandler, logger zerolog.Logger) *attendancehttp.Router {
	return attendancehttp.NewRouter(handler, logger)
}

// RegisterRoutes registers attendance routes on the server
func RegisterRoutes(srv *server.Server, router *attendancehttp.Router) {
	router.RegisterRoutes(srv.Router)
}
