package usher

import (
	"context"
	"log/slog"

	"github.com/aretw0/usher/internal/logging"
	"github.com/aretw0/usher/internal/runtime"
	"github.com/aretw0/usher/pkg/domain"
	"github.com/aretw0/usher/pkg/ports"
	"github.com/aretw0/usher/pkg/sched"
)

// Controller is the high-level entry point for the Usher library.
// It owns the effectful half of the open cycle: watching committed request
// transitions, checking the capability, running the single asynchronous open
// attempt and reporting classified outcomes back to the host. All state
// mutation stays with the host reducer.
type Controller struct {
	opener     ports.Opener
	scheduler  ports.Scheduler
	journal    ports.OutcomeJournal
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
	classifier *Classifier
	watcher    *runtime.Watcher
}

// Option defines a functional option for configuring the Controller.
type Option func(*Controller)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Controller) {
		c.hooks = hooks
	}
}

// WithScheduler injects a custom scheduler. Tests use sched.NewManual to
// make the asynchronous attempt deterministic; the default is the system
// clock and real goroutines.
func WithScheduler(s ports.Scheduler) Option {
	return func(c *Controller) {
		c.scheduler = s
	}
}

// WithJournal records every classified outcome to the given journal.
func WithJournal(j ports.OutcomeJournal) Option {
	return func(c *Controller) {
		c.journal = j
	}
}

// WithLogger sets a custom structured logger for the controller.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// New initializes a Controller around the host capability. The opener is the
// only required collaborator; everything else defaults to quiet no-ops.
func New(opener ports.Opener, opts ...Option) (*Controller, error) {
	if opener == nil {
		return nil, domain.ErrOpenerRequired
	}

	c := &Controller{opener: opener}
	for _, opt := range opts {
		opt(c)
	}

	if c.scheduler == nil {
		c.scheduler = sched.NewSystem()
	}
	if c.logger == nil {
		c.logger = logging.NewNop()
	}

	c.classifier = NewClassifier(opener)
	c.watcher = runtime.New(runtime.Config{
		Opener:   opener,
		Sched:    c.scheduler,
		Classify: ClassifyAttempt,
		Journal:  c.journal,
		Hooks:    c.hooks,
		Logger:   c.logger.With("component", "controller"),
	})

	return c, nil
}

// Observe feeds one committed transition of the host's pending field into
// the controller. Only the idle-to-pending edge arms a cycle; resetting the
// same value or clearing the field does nothing, and a value replacement
// while an attempt is in flight is ignored and reported through OnConflict.
//
// dispatch receives the classified outcome exactly once per armed cycle and
// must route it back through the host reducer (see Attach) so the pending
// field is cleared for the next request. Unsupported resources resolve
// synchronously, before Observe returns; supported ones resolve from the
// scheduler once the attempt finishes.
func (c *Controller) Observe(ctx context.Context, prev, next domain.Request, dispatch func(domain.Outcome)) {
	c.watcher.Observe(ctx, prev, next, dispatch)
}

// Open runs one full cycle synchronously and returns the classified
// outcome. The error is reserved for refusals to start: an empty resource,
// a cycle already in flight, or a context that is already done. A failed
// attempt is a KindOpenFailed outcome, not an error.
func (c *Controller) Open(ctx context.Context, resource string) (domain.Outcome, error) {
	return c.watcher.Run(ctx, resource)
}

// Supported reports the capability verdict for a resource without opening
// anything.
func (c *Controller) Supported(resource string) bool {
	return c.classifier.ClassifyCapability(resource) == Supported
}

// Busy reports whether an open attempt is currently outstanding.
func (c *Controller) Busy() bool {
	return c.watcher.Busy()
}

// Active returns the resource of the outstanding attempt, if any.
func (c *Controller) Active() (string, bool) {
	return c.watcher.Active()
}

// Classifier returns the outcome classifier backed by the controller's
// capability.
func (c *Controller) Classifier() *Classifier {
	return c.classifier
}
