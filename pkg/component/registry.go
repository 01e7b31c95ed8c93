package component

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"
)

// ErrUnknownComponent is returned when instantiating an identifier that has
// not been registered.
var ErrUnknownComponent = errors.New("component: unknown component")

// Factory creates a fresh element instance.
type Factory func() Element

// Template returns a factory for a custom element named tag whose body is the
// given trusted HTML.
func Template(tag, html string) Factory {
	return func() Element {
		return El(tag, Raw(html))
	}
}

// Registry maps component identifiers to factories. It is safe for
// concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	loads     singleflight.Group
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds or replaces the factory for name.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	r.factories[name] = f
	r.mu.Unlock()
}

// IsRegistered reports whether name can be instantiated.
func (r *Registry) IsRegistered(name string) bool {
	r.mu.RLock()
	_, ok := r.factories[name]
	r.mu.RUnlock()
	return ok
}

// Instantiate creates a new element for name.
func (r *Registry) Instantiate(name string) (Element, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownComponent, name)
	}
	return f(), nil
}

// Names returns the registered identifiers in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load runs load unless name is already registered. Concurrent calls for the
// same name share a single invocation. After a successful load, name must be
// registered; otherwise ErrUnknownComponent is returned.
func (r *Registry) Load(ctx context.Context, name string, load func(context.Context) error) error {
	if r.IsRegistered(name) {
		return nil
	}
	_, err, _ := r.loads.Do(name, func() (any, error) {
		if r.IsRegistered(name) {
			return nil, nil
		}
		if err := load(ctx); err != nil {
			return nil, err
		}
		if !r.IsRegistered(name) {
			return nil, fmt.Errorf("%w: %q after import", ErrUnknownComponent, name)
		}
		return nil, nil
	})
	return err
}
