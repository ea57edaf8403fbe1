package service

import (
	"context"
	"io"

	"github.com/ekisa-team/voxbridge/internal/xfs"
)

// STT is a service abstraction for speech-to-text.
type STT struct {
	registry *Registry
}

// NewSTT creates a new STT service.
func NewSTT(registry *Registry) *STT {
	return &STT{registry: registry}
}

// Transcribe writes audio to a temporary file named after filename's
// extension, transcribes it with the active engine and removes the file.
func (s *STT) Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error) {
	h, err := s.registry.Acquire()
	if err != nil {
		return "", err
	}
	defer h.Release()

	text, err := xfs.WithTempFile(audio, xfs.SuffixFor(filename), func(path string) (string, error) {
		return h.Engine().Transcribe(ctx, path)
	})
	if err != nil {
		return "", &TranscriptionError{Err: err}
	}

	return text, nil
}
