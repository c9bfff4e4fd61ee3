package provider

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Registry manages named provider factories and registered instances.
// Registration is last-wins: re-registering a name replaces the instance.
type Registry[T Provider] struct {
	mu        sync.RWMutex
	factories map[string]Factory[T]
	instances map[string]T
}

// NewRegistry creates a new empty Registry.
func NewRegistry[T Provider]() *Registry[T] {
	return &Registry[T]{
		factories: make(map[string]Factory[T]),
		instances: make(map[string]T),
	}
}

// RegisterFactory registers a named factory for creating providers.
func (r *Registry[T]) RegisterFactory(name string, factory Factory[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Create instantiates a provider using the named factory and config.
func (r *Registry[T]) Create(name string, cfg map[string]any) (T, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		var zero T
		return zero, fmt.Errorf("provider factory %q not registered", name)
	}
	return factory(cfg)
}

// Register stores a provider instance by name, replacing any prior instance.
func (r *Registry[T]) Register(name string, instance T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.instances[name] = instance
}

// Get returns a registered provider instance by name.
func (r *Registry[T]) Get(name string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.instances[name]
	return inst, ok
}

// IsAvailable reports whether the named provider is registered and ready.
func (r *Registry[T]) IsAvailable(ctx context.Context, name string) bool {
	p, ok := r.Get(name)
	if !ok {
		return false
	}
	return p.IsAvailable(ctx)
}

// Names returns sorted names of all registered instances.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.instances))
	for name := range r.instances {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Status reports availability of every registered provider.
func (r *Registry[T]) Status(ctx context.Context) map[string]bool {
	r.mu.RLock()
	snapshot := make(map[string]T, len(r.instances))
	for name, inst := range r.instances {
		snapshot[name] = inst
	}
	r.mu.RUnlock()

	status := make(map[string]bool, len(snapshot))
	for name, inst := range snapshot {
		status[name] = inst.IsAvailable(ctx)
	}
	return status
}
