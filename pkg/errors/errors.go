package errors

import "fmt"

type baseError struct {
	message string
}

func (e *baseError) Error() string {
	return e.message
}

// ValidationError represents invalid caller input (HTTP 400)
type ValidationError struct {
	baseError
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{baseError{message: message}}
}

func NewValidationErrorf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{baseError{message: fmt.Sprintf(format, args...)}}
}

// NotFoundError represents a missing record (HTTP 404)
type NotFoundError struct {
	baseError
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{baseError{message: message}}
}

func NewNotFoundErrorf(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{baseError{message: fmt.Sprintf(format, args...)}}
}

// PreconditionError represents an operation attempted in the wrong state,
// e.g. enqueueing messages while the session is not connected (HTTP 409)
type PreconditionError struct {
	baseError
}

func NewPreconditionError(message string) *PreconditionError {
	return &PreconditionError{baseError{message: message}}
}

func NewPreconditionErrorf(format string, args ...interface{}) *PreconditionError {
	return &PreconditionError{baseError{message: fmt.Sprintf(format, args...)}}
}

// ProviderUnavailableError represents a failure to reach the chat provider (HTTP 503)
type ProviderUnavailableError struct {
	baseError
}

func NewProviderUnavailableError(message string) *ProviderUnavailableError {
	return &ProviderUnavailableError{baseError{message: message}}
}

func NewProviderUnavailableErrorf(format string, args ...interface{}) *ProviderUnavailableError {
	return &ProviderUnavailableError{baseError{message: fmt.Sprintf(format, args...)}}
}

// InternalError represents an unexpected internal failure (HTTP 500)
type InternalError struct {
	baseError
}

func NewInternalError(message string) *InternalError {
	return &InternalError{baseError{message: message}}
}

func NewInternalErrorf(format string, args ...interface{}) *InternalError {
	return &InternalError{baseError{message: fmt.Sprintf(format, args...)}}
}
