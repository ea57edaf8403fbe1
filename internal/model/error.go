package model

import "errors"

// Error definitions for the model package.
var (
	ErrNotFound        = errors.New("model not found in models directory")
	ErrInvalidName     = errors.New("invalid model name")
	ErrDownloadDisable = errors.New("model download is disabled")
)
