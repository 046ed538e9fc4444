// Package command provides an Opener that delegates resources to external
// handler processes. It follows a Strict Registry pattern: only commands
// registered for a scheme ever run, so a stray resource value can never
// pick its own executable.
package command

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"sort"
	"strings"
)

// Placeholder is replaced by the resource in a handler's argument list.
// Handlers without it receive the resource as their final argument.
const Placeholder = "{url}"

// Handler defines an allowed command execution for one scheme.
type Handler struct {
	Command     string
	Args        []string
	Environment map[string]string
}

// Opener implements ports.Opener by spawning the registered handler
// process for the resource's scheme.
type Opener struct {
	registry map[string]Handler
	baseDir  string
}

// Option configures the opener.
type Option func(*Opener)

// WithRegistry populates the allow-list from a loaded config.
func WithRegistry(handlers map[string]HandlerConfig) Option {
	return func(o *Opener) {
		for scheme, h := range handlers {
			o.register(scheme, Handler{
				Command:     h.Command,
				Args:        h.Args,
				Environment: h.Environment,
			})
		}
	}
}

// WithPlatformDefaults registers http and https against the operating
// system's URL handler (xdg-open, open, start).
func WithPlatformDefaults() Option {
	return func(o *Opener) {
		var h Handler
		switch runtime.GOOS {
		case "darwin":
			h = Handler{Command: "open", Args: []string{Placeholder}}
		case "windows":
			h = Handler{Command: "cmd", Args: []string{"/c", "start", Placeholder}}
		default:
			h = Handler{Command: "xdg-open", Args: []string{Placeholder}}
		}
		o.register("http", h)
		o.register("https", h)
	}
}

// WithBaseDir sets the working directory for handler processes.
func WithBaseDir(dir string) Option {
	return func(o *Opener) {
		o.baseDir = dir
	}
}

// New creates a command opener. Without options the registry is empty and
// every resource is reported as unsupported.
func New(opts ...Option) *Opener {
	o := &Opener{
		registry: make(map[string]Handler),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Register adds a trusted handler command for a scheme.
func (o *Opener) Register(scheme string, command string, args ...string) {
	o.register(scheme, Handler{Command: command, Args: args})
}

func (o *Opener) register(scheme string, h Handler) {
	o.registry[strings.ToLower(scheme)] = h
}

// Schemes returns the registered schemes in sorted order.
func (o *Opener) Schemes() []string {
	schemes := make([]string, 0, len(o.registry))
	for s := range o.registry {
		schemes = append(schemes, s)
	}
	sort.Strings(schemes)
	return schemes
}

// Lookup returns the handler registered for a scheme, for introspection and
// routing reports.
func (o *Opener) Lookup(scheme string) (Handler, bool) {
	h, ok := o.registry[strings.ToLower(scheme)]
	return h, ok
}

// CanOpen reports whether a handler is registered for the resource's scheme.
func (o *Opener) CanOpen(resource string) bool {
	u, err := url.Parse(resource)
	if err != nil {
		return false
	}
	_, ok := o.registry[strings.ToLower(u.Scheme)]
	return ok
}

// Open runs the handler registered for the resource's scheme and waits for
// it to exit. A non-zero exit is returned as an error with the process's
// stderr attached, ready to travel as outcome data.
func (o *Opener) Open(ctx context.Context, resource string) error {
	u, err := url.Parse(resource)
	if err != nil {
		return fmt.Errorf("invalid resource: %w", err)
	}
	h, ok := o.registry[strings.ToLower(u.Scheme)]
	if !ok {
		return fmt.Errorf("no handler registered for scheme %q", u.Scheme)
	}

	// Security: the resource enters argv only through the placeholder (or
	// as the final argument), never through a shell string.
	cmd := exec.CommandContext(ctx, h.Command, substituteArgs(h.Args, resource)...)
	cmd.Dir = o.baseDir

	env := []string{fmt.Sprintf("USHER_RESOURCE=%s", resource)}
	for k, v := range h.Environment {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	cmd.Env = append(cmd.Environ(), env...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("handler failed: %w. Stderr: %s", err, msg)
		}
		return fmt.Errorf("handler failed: %w", err)
	}
	return nil
}

func substituteArgs(args []string, resource string) []string {
	out := make([]string, 0, len(args)+1)
	replaced := false
	for _, a := range args {
		if strings.Contains(a, Placeholder) {
			a = strings.ReplaceAll(a, Placeholder, resource)
			replaced = true
		}
		out = append(out, a)
	}
	if !replaced {
		out = append(out, resource)
	}
	return out
}
