package http

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/HoceineEl/madrasa-messaging/internal/domain/session/deps"
	"github.com/HoceineEl/madrasa-messaging/internal/domain/session/dto"
	sessionerrors "github.com/HoceineEl/madrasa-messaging/internal/domain/session/errors"
	pkgerrors "github.com/HoceineEl/madrasa-messaging/pkg/errors"
)

// SessionHandler handles provider session HTTP requests
type SessionHandler struct {
	useCase deps.SessionService
	mapper  *pkgerrors.Mapper
	logger  zerolog.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(useCase deps.SessionService, mapper *pkgerrors.Mapper, logger zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		useCase: useCase,
		mapper:  mapper,
		logger:  logger.With().Str("handler", "session").Logger(),
	}
}

// Start handles POST /api/v1/sessions/start
func (h *SessionHandler) Start(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}

	session, err := h.useCase.Start(ctx, userID)
	if err != nil {
		h.handleError(ctx, err)
		return
	}

	h.writeJSON(ctx, fasthttp.StatusOK, dto.FromSession(session))
}

// Status handles GET /api/v1/sessions/status
func (h *SessionHandler) Status(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}

	session, nextPoll, err := h.useCase.CheckStatus(ctx, userID)
	if err != nil {
		h.handleError(ctx, err)
		return
	}

	resp := dto.FromSession(session)
	resp.NextPollInMs = nextPoll.Milliseconds()
	h.writeJSON(ctx, fasthttp.StatusOK, resp)
}

// RefreshQR handles POST /api/v1/sessions/qr/refresh
func (h *SessionHandler) RefreshQR(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}

	session, err := h.useCase.RefreshQR(ctx, userID)
	if err != nil {
		h.handleError(ctx, err)
		return
	}

	h.writeJSON(ctx, fasthttp.StatusOK, dto.FromSession(session))
}

// Logout handles POST /api/v1/sessions/logout
func (h *SessionHandler) Logout(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}

	session, err := h.useCase.Logout(ctx, userID)
	if err != nil {
		h.handleError(ctx, err)
		return
	}

	h.writeJSON(ctx, fasthttp.StatusOK, dto.FromSession(session))
}

// Delete handles DELETE /api/v1/sessions
func (h *SessionHandler) Delete(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}

	if err := h.useCase.Delete(ctx, userID); err != nil {
		h.handleError(ctx, err)
		return
	}

	ctx.SetStatusCode(fasthttp.StatusNoContent)
}

// userID extracts the acting user from the X-User-ID header. Authentication
// is the calling application's concern; this service trusts the header.
func (h *SessionHandler) userID(ctx *fasthttp.RequestCtx) (uint, bool) {
	raw := string(ctx.Request.Header.Peek("X-User-ID"))
	if raw == "" {
		h.writeError(ctx, fasthttp.StatusBadRequest, "X-User-ID header is required")
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		h.writeError(ctx, fasthttp.StatusBadRequest, "X-User-ID must be a positive integer")
		return 0, false
	}
	return uint(id), true
}

// handleError maps domain errors to HTTP status codes
func (h *SessionHandler) handleError(ctx *fasthttp.RequestCtx, err error) {
	switch {
	case errors.Is(err, sessionerrors.ErrSessionNotFound):
		h.writeError(ctx, fasthttp.StatusNotFound, "session not found")
	case errors.Is(err, sessionerrors.ErrSessionExists):
		h.writeError(ctx, fasthttp.StatusConflict, "session already exists")
	case errors.Is(err, sessionerrors.ErrNotConnected):
		h.writeError(ctx, fasthttp.StatusConflict, "session is not connected")
	default:
		status, msg := h.mapper.MapErrorToHTTP(err)
		h.writeError(ctx, status, msg)
	}
}

// writeJSON writes JSON response
func (h *SessionHandler) writeJSON(ctx *fasthttp.RequestCtx, status int, data interface{}) {
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	if err := json.NewEncoder(ctx).Encode(data); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode response")
	}
}

// writeError writes error response
func (h *SessionHandler) writeError(ctx *fasthttp.RequestCtx, status int, message string) {
	h.writeJSON(ctx, status, dto.ErrorResponse{Error: message})
}
