package errors

import "errors"

var (
	ErrSessionNotFound     = errors.New("provider session not found")
	ErrSessionExists       = errors.New("session already exists for user")
	ErrNotConnected        = errors.New("session is not connected")
	ErrProviderUnavailable = errors.New("chat provider is unreachable")
)
