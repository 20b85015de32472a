package http

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/HoceineEl/madrasa-messaging/internal/domain/attendance/deps"
	"github.com/HoceineEl/madrasa-messaging/internal/domain/attendance/dto"
	"github.com/HoceineEl/madrasa-messaging/internal/domain/attendance/entities"
	pkgerrors "github.com/HoceineEl/madrasa-messaging/pkg/errors"
)

// AttendanceHandler handles reconciliation HTTP requests
type AttendanceHandler struct {
	useCase deps.AttendanceService
	mapper  *pkgerrors.Mapper
	logger  zerolog.Logger
}

// NewAttendanceHandler creates a new attendance handler
func NewAttendanceHandler(useCase deps.AttendanceService, mapper *pkgerrors.Mapper, logger zerolog.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		useCase: useCase,
		mapper:  mapper,
		logger:  logger.With().Str("handler", "attendance").Logger(),
	}
}

// Reconcile handles POST /api/v1/attendance/reconcile
func (h *AttendanceHandler) Reconcile(ctx *fasthttp.RequestCtx) {
	var req dto.ReconcileRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.writeError(ctx, fasthttp.StatusBadRequest, "invalid request body")
		return
	}
	if req.Date == "" {
		h.writeError(ctx, fasthttp.StatusBadRequest, "date is required")
		return
	}

	roster := make([]entities.RosterMember, len(req.Roster))
	present := make(map[uint]bool, len(req.Roster))
	for i, entry := range req.Roster {
		roster[i] = entities.RosterMember{ID: entry.ID, Name: entry.Name, RawPhone: entry.Phone}
		present[entry.ID] = entry.Present
	}

	result, err := h.useCase.Reconcile(ctx, roster, req.Date, req.SenderPhones, presenceMap(present))
	if err != nil {
		status, msg := h.mapper.MapErrorToHTTP(err)
		h.writeError(ctx, status, msg)
		return
	}

	h.writeJSON(ctx, fasthttp.StatusOK, dto.FromResult(result))
}

// presenceMap adapts the request's presence flags to the reader interface
type presenceMap map[uint]bool

func (p presenceMap) IsPresent(_ context.Context, memberID uint, _ string) (bool, error) {
	return p[memberID], nil
}

// writeJSON writes JSON response
func (h *AttendanceHandler) writeJSON(ctx *fasthttp.RequestCtx, status int, data interface{}) {
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	if err := json.NewEncoder(ctx).Encode(data); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode response")
	}
}

// writeError writes error response
func (h *AttendanceHandler) writeError(ctx *fasthttp.RequestCtx, status int, message string) {
	h.writeJSON(ctx, status, dto.ErrorResponse{Error: message})
}
