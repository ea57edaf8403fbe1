package backend

import (
	"context"
	"slices"
	"sync"

	"github.com/ekisa-team/voxbridge/internal/settings"
)

// TranscriberConstructor builds a transcriber for the given settings.
type TranscriberConstructor func(ctx context.Context, s settings.Settings) (Transcriber, error)

// Registry maps transcription providers to their constructors.
type Registry struct {
	constructors map[Provider]TranscriberConstructor
	mu           sync.RWMutex
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		constructors: make(map[Provider]TranscriberConstructor),
	}
}

// Register adds a provider. Registering the same provider twice fails.
func (r *Registry) Register(p Provider, c TranscriberConstructor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.constructors[p]; ok {
		return ErrAlreadyRegistered
	}

	r.constructors[p] = c
	return nil
}

// Get retrieves a provider constructor.
func (r *Registry) Get(p Provider) (TranscriberConstructor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.constructors[p]
	return c, ok
}

// Providers lists the registered providers in sorted order.
func (r *Registry) Providers() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Provider, 0, len(r.constructors))
	for p := range r.constructors {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}
