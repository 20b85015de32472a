package http

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/HoceineEl/madrasa-messaging/internal/domain/dispatch/deps"
	"github.com/HoceineEl/madrasa-messaging/internal/domain/dispatch/dto"
	"github.com/HoceineEl/madrasa-messaging/internal/domain/dispatch/entities"
	dispatcherrors "github.com/HoceineEl/madrasa-messaging/internal/domain/dispatch/errors"
	pkgerrors "github.com/HoceineEl/madrasa-messaging/pkg/errors"
)

// DispatchHandler handles outbound message HTTP requests
type DispatchHandler struct {
	useCase deps.DispatchService
	mapper  *pkgerrors.Mapper
	logger  zerolog.Logger
}

// NewDispatchHandler creates a new dispatch handler
func NewDispatchHandler(useCase deps.DispatchService, mapper *pkgerrors.Mapper, logger zerolog.Logger) *DispatchHandler {
	return &DispatchHandler{
		useCase: useCase,
		mapper:  mapper,
		logger:  logger.With().Str("handler", "dispatch").Logger(),
	}
}

// SendBatch handles POST /api/v1/messages/batch
func (h *DispatchHandler) SendBatch(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}

	var req dto.BatchRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.writeError(ctx, fasthttp.StatusBadRequest, "invalid request body")
		return
	}
	if req.Template == "" {
		h.writeError(ctx, fasthttp.StatusBadRequest, "template is required")
		return
	}

	messageType := entities.MessageType(req.MessageType)
	switch messageType {
	case entities.TypeReminder, entities.TypeAttendance, entities.TypeCustom:
	case "":
		messageType = entities.TypeCustom
	default:
		h.writeError(ctx, fasthttp.StatusBadRequest, "unknown message_type")
		return
	}

	recipients := make([]deps.BatchRecipient, len(req.Recipients))
	for i, r := range req.Recipients {
		recipients[i] = deps.BatchRecipient{
			StudentName:  r.StudentName,
			GroupName:    r.GroupName,
			RawPhone:     r.Phone,
			LastPresence: r.LastPresence,
		}
	}

	summary, err := h.useCase.EnqueueBatch(ctx, userID, recipients, req.Template, messageType)
	if err != nil {
		h.handleError(ctx, err)
		return
	}

	h.writeJSON(ctx, fasthttp.StatusAccepted, dto.BatchResponse{
		BatchID:       summary.BatchID,
		Queued:        summary.Queued,
		Skipped:       summary.Skipped,
		Failed:        summary.Failed,
		SkippedPhones: summary.SkippedPhones,
	})
}

// Retry handles POST /api/v1/messages/{id}/retry
func (h *DispatchHandler) Retry(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}
	messageID, ok := h.messageID(ctx)
	if !ok {
		return
	}

	msg, err := h.useCase.Retry(ctx, userID, messageID)
	if err != nil {
		h.handleError(ctx, err)
		return
	}

	h.writeJSON(ctx, fasthttp.StatusOK, dto.FromMessage(msg))
}

// Cancel handles POST /api/v1/messages/{id}/cancel
func (h *DispatchHandler) Cancel(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}
	messageID, ok := h.messageID(ctx)
	if !ok {
		return
	}

	msg, err := h.useCase.Cancel(ctx, userID, messageID)
	if err != nil {
		h.handleError(ctx, err)
		return
	}

	h.writeJSON(ctx, fasthttp.StatusOK, dto.FromMessage(msg))
}

// History handles GET /api/v1/messages
func (h *DispatchHandler) History(ctx *fasthttp.RequestCtx) {
	userID, ok := h.userID(ctx)
	if !ok {
		return
	}

	status := string(ctx.QueryArgs().Peek("status"))
	limit, _ := strconv.Atoi(string(ctx.QueryArgs().Peek("limit")))
	offset, _ := strconv.Atoi(string(ctx.QueryArgs().Peek("offset")))

	messages, total, err := h.useCase.History(ctx, userID, status, limit, offset)
	if err != nil {
		h.handleError(ctx, err)
		return
	}

	resp := dto.HistoryResponse{
		Messages: make([]dto.MessageResponse, len(messages)),
		Total:    total,
	}
	for i := range messages {
		resp.Messages[i] = dto.FromMessage(&messages[i])
	}

	h.writeJSON(ctx, fasthttp.StatusOK, resp)
}

func (h *DispatchHandler) userID(ctx *fasthttp.RequestCtx) (uint, bool) {
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

func (h *DispatchHandler) messageID(ctx *fasthttp.RequestCtx) (uint, bool) {
	raw, _ := ctx.UserValue("id").(string)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		h.writeError(ctx, fasthttp.StatusBadRequest, "message id must be a positive integer")
		return 0, false
	}
	return uint(id), true
}

// handleError maps domain errors to HTTP status codes
func (h *DispatchHandler) handleError(ctx *fasthttp.RequestCtx, err error) {
	switch {
	case errors.Is(err, dispatcherrors.ErrMessageNotFound):
		h.writeError(ctx, fasthttp.StatusNotFound, "message not found")
	case errors.Is(err, dispatcherrors.ErrNotRetryable):
		h.writeError(ctx, fasthttp.StatusConflict, "message is not retryable")
	case errors.Is(err, dispatcherrors.ErrNotCancellable):
		h.writeError(ctx, fasthttp.StatusConflict, "message is not cancellable")
	case errors.Is(err, dispatcherrors.ErrQueueFull):
		h.writeError(ctx, fasthttp.StatusTooManyRequests, "dispatch queue is full")
	default:
		status, msg := h.mapper.MapErrorToHTTP(err)
		h.writeError(ctx, status, msg)
	}
}

// writeJSON writes JSON response
func (h *DispatchHandler) writeJSON(ctx *fasthttp.RequestCtx, status int, data interface{}) {
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	if err := json.NewEncoder(ctx).Encode(data); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode response")
	}
}

// writeError writes error response
func (h *DispatchHandler) writeError(ctx *fasthttp.RequestCtx, status int, message string) {
	h.writeJSON(ctx, status, dto.ErrorResponse{Error: message})
}
