package errors

import (
	"errors"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

// Mapper maps domain errors to HTTP status codes
type Mapper struct {
	logger zerolog.Logger
}

// NewMapper creates a new error mapper
func NewMapper(logger zerolog.Logger) *Mapper {
	return &Mapper{logger: logger}
}

// MapErrorToHTTP maps an error to HTTP status code and message
func (m *Mapper) MapErrorToHTTP(err error) (int, string) {
	if err == nil {
		return fasthttp.StatusOK, ""
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return fasthttp.StatusBadRequest, validationErr.Error()
	}

	var notFoundErr *NotFoundError
	if errors.As(err, &notFoundErr) {
		return fasthttp.StatusNotFound, notFoundErr.Error()
	}

	var preconditionErr *PreconditionError
	if errors.As(err, &preconditionErr) {
		return fasthttp.StatusConflict, preconditionErr.Error()
	}

	var providerErr *ProviderUnavailableError
	if errors.As(err, &providerErr) {
		return fasthttp.StatusServiceUnavailable, providerErr.Error()
	}

	var internalErr *InternalError
	if errors.As(err, &internalErr) {
		m.logger.Error().Err(err).Msg("internal server error")
		return fasthttp.StatusInternalServerError, "internal server error"
	}

	m.logger.Error().Err(err).Msg("unmapped error")
	return fasthttp.StatusInternalServerError, "internal server error"
}
