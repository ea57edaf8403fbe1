package service

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/ekisa-team/voxbridge/internal/backend"
	"github.com/ekisa-team/voxbridge/internal/settings"
)

// Observer is notified after a new handle is installed.
type Observer func(h *Handle)

// Registry holds the single active engine. Reads are a lock-free atomic load;
// updates build the candidate engine first and install it with a
// compare-and-swap, so a failed update never disturbs the running engine.
type Registry struct {
	factory backend.Factory
	current atomic.Pointer[Handle]
	seq     atomic.Uint64
	closed  atomic.Bool

	observers       []Observer
	maxElapsed      time.Duration
	initialInterval time.Duration
	maxInterval     time.Duration
}

// Option configures a Registry.
type Option func(*Registry)

// WithObserver registers fn to run after every successful swap.
func WithObserver(fn Observer) Option {
	return func(r *Registry) {
		r.observers = append(r.observers, fn)
	}
}

// WithMaxElapsed bounds how long Bootstrap keeps retrying. Zero retries until
// the context is cancelled.
func WithMaxElapsed(d time.Duration) Option {
	return func(r *Registry) {
		r.maxElapsed = d
	}
}

// WithRetryInterval sets the initial and maximum Bootstrap retry delays.
func WithRetryInterval(initial, maxInterval time.Duration) Option {
	return func(r *Registry) {
		r.initialInterval = initial
		r.maxInterval = maxInterval
	}
}

// NewRegistry creates an uninitialized registry.
func NewRegistry(factory backend.Factory, opts ...Option) *Registry {
	r := &Registry{
		factory:         factory,
		initialInterval: time.Second,
		maxInterval:     30 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Current returns the installed handle, or nil before the first successful
// construction. The handle is not borrowed; use it for metadata only.
func (r *Registry) Current() *Handle {
	return r.current.Load()
}

// Ready reports whether an engine is installed.
func (r *Registry) Ready() bool {
	return r.current.Load() != nil
}

// Acquire borrows the installed handle for one request. The caller must call
// Release when done.
func (r *Registry) Acquire() (*Handle, error) {
	for {
		h := r.current.Load()
		if h == nil {
			return nil, ErrNotReady
		}
		if h.acquire() {
			return h, nil
		}
		// h was retired between the load and the acquire; its successor is
		// already installed.
	}
}

// Replace builds an engine for s and installs it. On failure the current
// handle is left in place and a *ConstructionError is returned. If a newer
// update was installed while this one was being built, the new engine is
// discarded and ErrSuperseded is returned.
func (r *Registry) Replace(ctx context.Context, s settings.Settings) error {
	return r.replace(ctx, s, false)
}

// replace builds and installs an engine. An initial candidate only fills an
// empty registry and never displaces an installed handle.
func (r *Registry) replace(ctx context.Context, s settings.Settings, initial bool) error {
	if r.closed.Load() {
		return ErrClosed
	}

	generation := r.seq.Add(1)
	started := time.Now()

	engine, err := r.factory(ctx, s)
	if err != nil {
		slog.Error("Failed to construct engine", "generation", generation, "settings", s.Redacted(), "error", err)
		return &ConstructionError{Err: err}
	}

	if err := r.install(newHandle(s, engine, generation), initial); err != nil {
		return err
	}

	slog.Info("Engine installed",
		"generation", generation,
		"whisper_model", s.WhisperModel,
		"llm_model", s.Model,
		"llm_base_url", s.BaseURL,
		"duration", time.Since(started),
	)
	return nil
}

func (r *Registry) install(h *Handle, initial bool) error {
	for {
		old := r.current.Load()
		if old != nil && (initial || old.generation > h.generation) {
			h.retire()
			slog.Warn("Discarding superseded engine", "generation", h.generation, "installed", old.generation)
			return ErrSuperseded
		}

		if !r.current.CompareAndSwap(old, h) {
			continue
		}

		if old != nil {
			old.retire()
		}

		if r.closed.Load() {
			if r.current.CompareAndSwap(h, nil) {
				h.retire()
			}
			return ErrClosed
		}

		for _, fn := range r.observers {
			fn(h)
		}
		return nil
	}
}

// Bootstrap performs the initial construction, retrying with exponential
// backoff until it succeeds, ctx is cancelled or the max elapsed time passes.
// It stops as soon as any engine is installed and never replaces one.
func (r *Registry) Bootstrap(ctx context.Context, s settings.Settings) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initialInterval
	b.MaxInterval = r.maxInterval

	attempt := 0
	operation := func() (struct{}, error) {
		if r.Ready() {
			// An update arrived between attempts; it takes precedence.
			return struct{}{}, nil
		}

		attempt++
		err := r.replace(ctx, s, true)
		switch {
		case err == nil, errors.Is(err, ErrSuperseded):
			// An update won the race, so the registry is ready either way.
			return struct{}{}, nil
		case errors.Is(err, ErrClosed):
			return struct{}{}, backoff.Permanent(err)
		default:
			return struct{}{}, err
		}
	}

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(b),
		backoff.WithMaxElapsedTime(r.maxElapsed),
		backoff.WithNotify(func(err error, next time.Duration) {
			slog.Warn("Engine construction failed, retrying", "attempt", attempt, "retry_in", next, "error", err)
		}),
	)
	return err
}

// Close uninstalls the current handle. Its engine is closed once in-flight
// requests release it. Later updates fail with ErrClosed.
func (r *Registry) Close() error {
	if r.closed.Swap(true) {
		return nil
	}
	if h := r.current.Swap(nil); h != nil {
		h.retire()
	}
	return nil
}
