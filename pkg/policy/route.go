package policy

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aretw0/usher/pkg/ports"
)

// RouteBuilder provides a fluent API for configuring one scheme route.
type RouteBuilder struct {
	scheme  string
	opener  ports.Opener
	allow   []string
	deny    []string
	builder *Builder
}

// Use assigns the opener that handles this route.
func (r *RouteBuilder) Use(opener ports.Opener) *RouteBuilder {
	r.opener = opener
	return r
}

// Allow restricts the route to the given hostnames. An empty allowlist
// permits every host not denied.
func (r *RouteBuilder) Allow(hosts ...string) *RouteBuilder {
	r.allow = append(r.allow, hosts...)
	return r
}

// Deny refuses the given hostnames. Deny wins over Allow.
func (r *RouteBuilder) Deny(hosts ...string) *RouteBuilder {
	r.deny = append(r.deny, hosts...)
	return r
}

// Route starts configuring another scheme on the parent builder, so routes
// chain fluently.
func (r *RouteBuilder) Route(scheme string) *RouteBuilder {
	return r.builder.Route(scheme)
}

func (r *RouteBuilder) compile() (ports.Opener, error) {
	if r.opener == nil {
		return nil, errors.New("no opener assigned (missing Use)")
	}
	if len(r.allow) == 0 && len(r.deny) == 0 {
		return r.opener, nil
	}
	return &filteredOpener{
		next:  r.opener,
		allow: hostSet(r.allow),
		deny:  hostSet(r.deny),
	}, nil
}

func hostSet(hosts []string) map[string]bool {
	if len(hosts) == 0 {
		return nil
	}
	set := make(map[string]bool, len(hosts))
	for _, h := range hosts {
		set[strings.ToLower(h)] = true
	}
	return set
}

// filteredOpener applies host allow/deny rules before delegating.
type filteredOpener struct {
	next  ports.Opener
	allow map[string]bool
	deny  map[string]bool
}

func (f *filteredOpener) permits(resource string) bool {
	u, err := url.Parse(resource)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if f.deny[host] {
		return false
	}
	if f.allow != nil && !f.allow[host] {
		return false
	}
	return true
}

func (f *filteredOpener) CanOpen(resource string) bool {
	return f.permits(resource) && f.next.CanOpen(resource)
}

func (f *filteredOpener) Open(ctx context.Context, resource string) error {
	if !f.permits(resource) {
		return fmt.Errorf("host refused by policy: %s", resource)
	}
	return f.next.Open(ctx, resource)
}
