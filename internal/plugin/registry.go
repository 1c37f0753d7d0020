package plugin

import (
	"sort"
	"sync"
)

// Registry maps report target names to targets.
type Registry struct {
	targets map[string]Target
	mu      sync.RWMutex
}

// NewRegistry creates an empty target registry.
func NewRegistry() *Registry {
	return &Registry{
		targets: make(map[string]Target),
	}
}

// Register adds a target to the registry.
// Returns an error if a target with the same name is already registered.
func (r *Registry) Register(t Target) error {
	if t == nil {
		return NewRegistrationError("", "target cannot be nil")
	}

	name := t.Name()
	if name == "" {
		return NewRegistrationError("", "target name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.targets[name]; exists {
		return NewRegistrationError(name, "target already registered")
	}

	r.targets[name] = t
	return nil
}

// MustRegister adds a target to the registry, panicking on error.
func (r *Registry) MustRegister(t Target) {
	if err := r.Register(t); err != nil {
		panic(err)
	}
}

// Get retrieves a target by name.
func (r *Registry) Get(name string) (Target, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, exists := r.targets[name]
	return t, exists
}

// List returns a sorted list of all registered target names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.targets))
	for name := range r.targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry returns a registry holding the built-in targets.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister(MyselfTarget{})
	r.MustRegister(StatusTarget{})
	return r
}
