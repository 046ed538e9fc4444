package policy

import (
	"fmt"

	"github.com/aretw0/usher/pkg/registry"
)

// Builder manages the route construction.
type Builder struct {
	routes map[string]*RouteBuilder
	order  []string
}

// New creates a new policy builder.
func New() *Builder {
	return &Builder{
		routes: make(map[string]*RouteBuilder),
	}
}

// Route creates a new route for the scheme.
// If the route already exists, it returns the existing builder.
func (b *Builder) Route(scheme string) *RouteBuilder {
	if rb, ok := b.routes[scheme]; ok {
		return rb
	}
	rb := &RouteBuilder{
		scheme:  scheme,
		builder: b,
	}
	b.routes[scheme] = rb
	b.order = append(b.order, scheme)
	return rb
}

// Build compiles the policy into a scheme registry. Every route must have
// an opener assigned via Use.
func (b *Builder) Build() (*registry.Registry, error) {
	reg := registry.New()
	for _, scheme := range b.order {
		rb := b.routes[scheme]
		opener, err := rb.compile()
		if err != nil {
			return nil, fmt.Errorf("route %q: %w", scheme, err)
		}
		reg.Register(scheme, opener)
	}
	return reg, nil
}
