// Package browser provides an Opener that hands resources to the
// platform's default web browser.
package browser

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	launcher "github.com/pkg/browser"
)

// Opener implements ports.Opener on the operating system's URL handler
// (xdg-open, open, start). Only web schemes are accepted by default, so
// a controller wired with this opener classifies anything else as
// unsupported instead of handing it to the shell.
type Opener struct {
	schemes map[string]bool
	launch  func(url string) error
}

// Option configures the opener.
type Option func(*Opener)

// WithSchemes replaces the accepted scheme set (default http and https).
func WithSchemes(schemes ...string) Option {
	return func(o *Opener) {
		o.schemes = make(map[string]bool, len(schemes))
		for _, s := range schemes {
			o.schemes[strings.ToLower(s)] = true
		}
	}
}

// WithLauncher replaces the platform launch call. Mostly useful in tests
// and in hosts that want to log instead of spawning a real browser.
func WithLauncher(launch func(url string) error) Option {
	return func(o *Opener) {
		o.launch = launch
	}
}

// New creates a browser opener.
func New(opts ...Option) *Opener {
	o := &Opener{
		schemes: map[string]bool{"http": true, "https": true},
		launch:  launcher.OpenURL,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// CanOpen reports whether the resource parses as a URL with an accepted
// scheme.
func (o *Opener) CanOpen(resource string) bool {
	u, err := url.Parse(resource)
	if err != nil {
		return false
	}
	return o.schemes[strings.ToLower(u.Scheme)]
}

// Open hands the resource to the default browser. The launch call spawns
// the handler and returns; it does not wait for the browser to exit.
func (o *Opener) Open(ctx context.Context, resource string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !o.CanOpen(resource) {
		return fmt.Errorf("scheme not handled by browser: %s", resource)
	}
	return o.launch(resource)
}
