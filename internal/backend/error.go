package backend

import "errors"

// Error definitions for the backend package.
var (
	ErrNotFound          = errors.New("transcription provider not found in registry")
	ErrAlreadyRegistered = errors.New("transcription provider is already registered in the registry")
	ErrServerNotFound    = errors.New("server not found")
)
