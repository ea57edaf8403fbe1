package service

import (
	"context"
	"strings"
)

// LLM is a service abstraction for transcript cleanup.
type LLM struct {
	registry *Registry
}

// NewLLM creates a new LLM service.
func NewLLM(registry *Registry) *LLM {
	return &LLM{registry: registry}
}

// Clean rewrites text with the active engine. A nil or blank systemPrompt
// selects the engine's default prompt.
func (s *LLM) Clean(ctx context.Context, text string, systemPrompt *string) (string, error) {
	h, err := s.registry.Acquire()
	if err != nil {
		return "", err
	}
	defer h.Release()

	engine := h.Engine()
	prompt := engine.DefaultPrompt()
	if systemPrompt != nil && strings.TrimSpace(*systemPrompt) != "" {
		prompt = *systemPrompt
	}

	cleaned, err := engine.Cleanup(ctx, text, prompt)
	if err != nil {
		return "", &CleanupError{Err: err}
	}

	return cleaned, nil
}

// DefaultPrompt returns the active engine's default cleanup prompt.
func (s *LLM) DefaultPrompt() (string, error) {
	h, err := s.registry.Acquire()
	if err != nil {
		return "", err
	}
	defer h.Release()

	return h.Engine().DefaultPrompt(), nil
}
