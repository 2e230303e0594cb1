package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrNotRegistered is returned by Lookup for unknown names.
var ErrNotRegistered = errors.New("not registered")

// Registry is a concurrency-safe name -> value table.
type Registry[T any] struct {
	mu      sync.RWMutex
	kind    string
	entries map[string]T
}

// New creates an empty registry. kind names the entries in error messages
// ("generator", "tool", ...).
func New[T any](kind string) *Registry[T] {
	return &Registry[T]{
		kind:    kind,
		entries: make(map[string]T),
	}
}

// Register adds an entry. If an entry with the same name exists, it is overwritten.
func (r *Registry[T]) Register(name string, v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[name] = v
}

// Unregister removes an entry.
func (r *Registry[T]) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, name)
}

// Lookup returns the entry registered under name.
func (r *Registry[T]) Lookup(name string) (T, error) {
	r.mu.RLock()
	v, ok := r.entries[name]
	r.mu.RUnlock()

	if !ok {
		var zero T
		return zero, fmt.Errorf("%s %q: %w", r.kind, name, ErrNotRegistered)
	}
	return v, nil
}

// Names returns the registered names in sorted order.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
