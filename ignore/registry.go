// Package ignore holds the set of error kinds that are never reported.
package ignore

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/samber/lo"
)

// UnknownKindError is returned when a kind cannot be resolved at registration time
type UnknownKindError struct {
	Kind string
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("unknown error kind %q", e.Kind)
}

// Resolver reports whether kind names an error kind known to the application
type Resolver func(kind string) bool

// Option configures a Registry
type Option func(*Registry)

// WithResolver validates every registered kind against resolve
func WithResolver(resolve Resolver) Option {
	return func(r *Registry) {
		r.resolve = resolve
	}
}

// Registry is a set of ignored kinds. Reads are safe from many goroutines;
// registration is expected during start-up.
type Registry struct {
	mu      sync.RWMutex
	kinds   map[string]struct{}
	resolve Resolver
}

// New creates an empty registry
func New(opts ...Option) *Registry {
	r := &Registry{kinds: make(map[string]struct{})}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds kinds to the set. If any kind is empty or rejected by the
// resolver nothing from this call is added.
func (r *Registry) Register(kinds ...string) (*Registry, error) {
	kinds = lo.Uniq(lo.Map(kinds, func(kind string, _ int) string {
		return strings.TrimSpace(kind)
	}))

	for _, kind := range kinds {
		if kind == "" || (r.resolve != nil && !r.resolve(kind)) {
			return r, &UnknownKindError{Kind: kind}
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, kind := range kinds {
		r.kinds[kind] = struct{}{}
	}
	return r, nil
}

// IsIgnored reports whether kind is in the set
func (r *Registry) IsIgnored(kind string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.kinds[kind]
	return ok
}

// Kinds returns the registered kinds in sorted order
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	kinds := lo.Keys(r.kinds)
	r.mu.RUnlock()

	sort.Strings(kinds)
	return kinds
}

// Len returns the number of registered kinds
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.kinds)
}
