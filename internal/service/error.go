package service

import "errors"

// Error definitions for the service package.
var (
	ErrNotReady   = errors.New("service not ready")
	ErrSuperseded = errors.New("settings update superseded by a newer update")
	ErrClosed     = errors.New("service registry closed")
)

// ConstructionError reports that an engine could not be built from the
// requested settings. The previously installed engine stays active.
type ConstructionError struct {
	Err error
}

func (e *ConstructionError) Error() string {
	return "construct engine: " + e.Err.Error()
}

func (e *ConstructionError) Unwrap() error {
	return e.Err
}

// TranscriptionError reports a failed transcription.
type TranscriptionError struct {
	Err error
}

func (e *TranscriptionError) Error() string {
	return e.Err.Error()
}

func (e *TranscriptionError) Unwrap() error {
	return e.Err
}

// CleanupError reports a failed LLM cleanup.
type CleanupError struct {
	Err error
}

func (e *CleanupError) Error() string {
	return e.Err.Error()
}

func (e *CleanupError) Unwrap() error {
	return e.Err
}
