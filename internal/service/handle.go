package service

import (
	"log/slog"
	"sync"

	"github.com/ekisa-team/voxbridge/internal/backend"
	"github.com/ekisa-team/voxbridge/internal/settings"
)

// Handle pairs an engine with the settings it was built from. Handles are
// immutable; a settings change installs a new one. A handle displaced from the
// registry is retired and its engine is closed once the last borrower calls
// Release.
type Handle struct {
	settings   settings.Settings
	engine     backend.Engine
	generation uint64

	mu      sync.Mutex
	refs    int
	retired bool
	once    sync.Once
}

func newHandle(s settings.Settings, engine backend.Engine, generation uint64) *Handle {
	return &Handle{settings: s, engine: engine, generation: generation}
}

// Settings returns the settings the engine was built from.
func (h *Handle) Settings() settings.Settings {
	return h.settings
}

// Engine returns the engine.
func (h *Handle) Engine() backend.Engine {
	return h.engine
}

// Generation returns the sequence number of the update that built the handle.
func (h *Handle) Generation() uint64 {
	return h.generation
}

// Release returns a handle obtained from Registry.Acquire.
func (h *Handle) Release() {
	h.mu.Lock()
	h.refs--
	closeNow := h.retired && h.refs == 0
	h.mu.Unlock()

	if closeNow {
		h.close()
	}
}

// Closed reports whether the engine has been closed.
func (h *Handle) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.retired && h.refs == 0
}

func (h *Handle) acquire() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.retired {
		return false
	}
	h.refs++
	return true
}

func (h *Handle) retire() {
	h.mu.Lock()
	h.retired = true
	closeNow := h.refs == 0
	h.mu.Unlock()

	if closeNow {
		h.close()
	}
}

func (h *Handle) close() {
	h.once.Do(func() {
		if err := h.engine.Close(); err != nil {
			slog.Warn("Failed to close engine", "generation", h.generation, "error", err)
			return
		}
		slog.Debug("Engine closed", "generation", h.generation)
	})
}
