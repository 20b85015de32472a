package errors

import "errors"

var (
	ErrMessageNotFound = errors.New("outbound message not found")
	ErrNotRetryable    = errors.New("message is not retryable")
	ErrNotCancellable  = errors.New("message is not in a cancellable state")
	ErrQueueFull       = errors.New("dispatch queue is full")
	ErrNoRecipients    = errors.New("batch contains no recipients")
)
