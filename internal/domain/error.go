package domain

import "errors"

var (
	// Common domain errors
	ErrSessionNotFound       = errors.New("chat session not found")
	ErrInvalidArgument       = errors.New("invalid argument")
	ErrUnknownModel          = errors.New("unknown model selection")
	ErrProviderNotConfigured = errors.New("provider not configured: missing API key")
)
