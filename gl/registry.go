package gl

import (
	"fmt"
	"sort"
	"sync"
)

// Factory creates a new backend context.
// Factories are registered via Register and called by Open.
type Factory func() (Context, error)

// Registry state - protected by mutex for thread-safe access.
var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
)

// Register registers a backend factory with the given name.
// This function is typically called from init() in backend packages:
//
//	func init() {
//	    gl.Register("trace", func() (gl.Context, error) {
//	        return New(), nil
//	    })
//	}
//
// Register panics if factory is nil or if a backend with the same name is
// already registered.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if factory == nil {
		panic("gl: Register factory is nil")
	}
	if _, dup := factories[name]; dup {
		panic("gl: Register called twice for " + name)
	}
	factories[name] = factory
}

// Unregister removes a backend from the registry.
// If the backend is not registered, this is a no-op.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, name)
}

// Open creates a new backend context by name.
//
//	import _ "github.com/gogpu/gfx/gl/gltrace"
//
//	ctx, err := gl.Open("trace")
func Open(name string) (Context, error) {
	registryMu.RLock()
	factory, ok := factories[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("gl: unknown backend %q (forgotten import?)", name)
	}
	ctx, err := factory()
	if err != nil {
		return nil, fmt.Errorf("gl: open backend %q: %w", name, err)
	}
	return ctx, nil
}

// MustOpen is like Open but panics on error.
func MustOpen(name string) Context {
	ctx, err := Open(name)
	if err != nil {
		panic(err)
	}
	return ctx
}

// Backends returns the sorted names of all registered backends.
func Backends() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := factories[name]
	return ok
}
