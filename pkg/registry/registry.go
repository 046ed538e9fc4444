// Package registry routes resources to openers by URL scheme.
package registry

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/usher/pkg/ports"
)

// Registry manages the available openers, keyed by URL scheme. It implements
// ports.Opener itself, so it can back a controller directly: CanOpen reports
// whether the opener registered for the resource's scheme accepts it, and
// Open routes the attempt to that opener.
type Registry struct {
	mu      sync.RWMutex
	openers map[string]ports.Opener
}

// New creates a new empty registry.
func New() *Registry {
	return &Registry{
		openers: make(map[string]ports.Opener),
	}
}

// Register adds an opener for the given scheme (e.g. "https").
// If an opener for the scheme exists, it is overwritten.
func (r *Registry) Register(scheme string, opener ports.Opener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.openers[strings.ToLower(scheme)] = opener
}

// Lookup returns the opener registered for the resource's scheme.
func (r *Registry) Lookup(resource string) (ports.Opener, bool) {
	scheme := Scheme(resource)
	if scheme == "" {
		return nil, false
	}
	r.mu.RLock()
	opener, ok := r.openers[scheme]
	r.mu.RUnlock()
	return opener, ok
}

// Schemes returns the registered schemes, sorted.
func (r *Registry) Schemes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	schemes := make([]string, 0, len(r.openers))
	for s := range r.openers {
		schemes = append(schemes, s)
	}
	sort.Strings(schemes)
	return schemes
}

// CanOpen implements ports.Opener. A resource is supported when its scheme
// is registered and the routed opener accepts it too.
func (r *Registry) CanOpen(resource string) bool {
	opener, ok := r.Lookup(resource)
	return ok && opener.CanOpen(resource)
}

// Open implements ports.Opener by routing to the opener registered for the
// resource's scheme. Returns an error if no opener is registered.
func (r *Registry) Open(ctx context.Context, resource string) error {
	opener, ok := r.Lookup(resource)
	if !ok {
		return fmt.Errorf("no opener registered for scheme %q", Scheme(resource))
	}
	return opener.Open(ctx, resource)
}

// Scheme extracts the lowercase scheme from a resource, or "" when the
// resource has none or does not parse as a URL.
func Scheme(resource string) string {
	u, err := url.Parse(resource)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Scheme)
}
