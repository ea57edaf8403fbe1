package model

import "sync"

// Registry caches resolved model file paths by model name.
type Registry struct {
	paths map[string]string
	mu    sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		paths: make(map[string]string),
	}
}

// Set records the path for a model name.
func (r *Registry) Set(name, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.paths[name] = path
}

// Get returns the recorded path for a model name.
func (r *Registry) Get(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	path, ok := r.paths[name]
	return path, ok
}

// Delete forgets a model name.
func (r *Registry) Delete(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.paths, name)
}
