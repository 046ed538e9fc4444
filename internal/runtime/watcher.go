// Package runtime contains the effectful engine behind the public
// controller: the watcher that turns committed request transitions into
// capability checks, open attempts and classified outcomes.
package runtime

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aretw0/usher/internal/logging"
	"github.com/aretw0/usher/pkg/domain"
	"github.com/aretw0/usher/pkg/ports"
)

// Classify maps a finished attempt onto outcome data.
type Classify func(resource string, err error) domain.Outcome

// Config carries the watcher dependencies. Opener, Sched and Classify are
// required; Journal, Hooks and Logger default to no-ops.
type Config struct {
	Opener   ports.Opener
	Sched    ports.Scheduler
	Classify Classify
	Journal  ports.OutcomeJournal
	Hooks    domain.LifecycleHooks
	Logger   *slog.Logger
}

// Watcher drives the effectful half of the open cycle. It never mutates host
// state: it observes committed (prev, next) pairs of the pending field and
// reports back through the dispatch callback and the configured journal and
// hooks. At most one attempt is outstanding at a time; triggers that arrive
// while the slot is taken are ignored and surfaced as conflict events.
type Watcher struct {
	opener   ports.Opener
	sched    ports.Scheduler
	classify Classify
	journal  ports.OutcomeJournal
	hooks    domain.LifecycleHooks
	logger   *slog.Logger

	mu     sync.Mutex
	active string
	busy   bool
}

// New assembles a watcher from the config.
func New(cfg Config) *Watcher {
	logger := logging.Named(cfg.Logger, "watcher")
	return &Watcher{
		opener:   cfg.Opener,
		sched:    cfg.Sched,
		classify: cfg.Classify,
		journal:  cfg.Journal,
		hooks:    cfg.Hooks,
		logger:   logger,
	}
}

// Busy reports whether an attempt is currently outstanding.
func (w *Watcher) Busy() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.busy
}

// Active returns the resource of the outstanding attempt, if any.
func (w *Watcher) Active() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active, w.busy
}

// Observe inspects one committed transition of the pending field. Only the
// idle-to-pending edge arms a cycle; every other shape (still idle, cleared,
// unchanged value) is a no-op, and a pending-to-pending value change is
// reported as a conflict without disturbing the outstanding attempt.
//
// dispatch is invoked exactly once per armed cycle with the classified
// outcome. For unsupported resources that happens synchronously, before
// Observe returns; for supported ones it happens from the scheduler once the
// attempt finishes. Dispatch must feed the outcome back into the host
// reducer so the pending field is cleared for the next cycle.
func (w *Watcher) Observe(ctx context.Context, prev, next domain.Request, dispatch func(domain.Outcome)) {
	switch domain.Edge(prev, next) {
	case domain.EdgeSet:
	case domain.EdgeReplaced:
		resource, _ := next.Resource()
		w.conflict(ctx, resource)
		return
	default:
		return
	}

	resource, _ := next.Resource()
	if !w.begin(resource) {
		w.conflict(ctx, resource)
		return
	}
	w.emitRequest(ctx, resource)

	if !w.opener.CanOpen(resource) {
		w.emitCheck(ctx, resource, false)
		w.settle(ctx, domain.Unsupported(resource), dispatch)
		return
	}
	w.emitCheck(ctx, resource, true)

	w.sched.Go(func() {
		w.emitAttempt(ctx, resource)
		err := w.opener.Open(ctx, resource)
		w.settle(ctx, w.classify(resource, err), dispatch)
	})
}

// Run performs one full cycle for resource synchronously, for hosts that
// want an outcome without wiring a reducer. The error return is reserved for
// refusals to start (empty resource, slot taken, context already done); once
// an attempt runs, its failure is outcome data.
func (w *Watcher) Run(ctx context.Context, resource string) (domain.Outcome, error) {
	if resource == "" {
		return domain.Outcome{}, domain.ErrInvalidResource
	}
	if err := ctx.Err(); err != nil {
		return domain.Outcome{}, err
	}
	if !w.begin(resource) {
		w.conflict(ctx, resource)
		return domain.Outcome{}, domain.ErrBusy
	}
	w.emitRequest(ctx, resource)

	if !w.opener.CanOpen(resource) {
		w.emitCheck(ctx, resource, false)
		return w.seal(ctx, domain.Unsupported(resource)), nil
	}
	w.emitCheck(ctx, resource, true)
	w.emitAttempt(ctx, resource)
	err := w.opener.Open(ctx, resource)
	return w.seal(ctx, w.classify(resource, err)), nil
}

// begin claims the in-flight slot. It fails when another attempt holds it.
func (w *Watcher) begin(resource string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.busy {
		return false
	}
	w.busy = true
	w.active = resource
	return true
}

func (w *Watcher) release() {
	w.mu.Lock()
	w.busy = false
	w.active = ""
	w.mu.Unlock()
}

// seal finalizes one cycle: stamp the outcome with scheduler time, record
// it, notify hooks and free the slot.
func (w *Watcher) seal(ctx context.Context, out domain.Outcome) domain.Outcome {
	out.At = w.sched.Now()
	if w.journal != nil {
		if err := w.journal.Record(ctx, out); err != nil {
			w.logger.Warn("outcome journal record failed",
				slog.String("resource", out.Resource),
				slog.Any("error", err))
		}
	}
	w.emitOutcome(ctx, out)
	// Free the slot before dispatch: the reducer pass triggered by dispatch
	// may legitimately arm the next cycle.
	w.release()
	return out
}

func (w *Watcher) settle(ctx context.Context, out domain.Outcome, dispatch func(domain.Outcome)) {
	out = w.seal(ctx, out)
	if dispatch != nil {
		dispatch(out)
	}
}

func (w *Watcher) conflict(ctx context.Context, resource string) {
	active, _ := w.Active()
	w.logger.Warn("request ignored while attempt in flight",
		slog.String("resource", resource),
		slog.String("active", active))
	if h := w.hooks.OnConflict; h != nil {
		h(ctx, &domain.ConflictEvent{
			EventBase: w.base(domain.EventConflict, resource),
			Active:    active,
		})
	}
}

func (w *Watcher) base(t domain.EventType, resource string) domain.EventBase {
	return domain.EventBase{
		Timestamp: w.sched.Now(),
		Type:      t,
		Resource:  resource,
	}
}

func (w *Watcher) emitRequest(ctx context.Context, resource string) {
	if h := w.hooks.OnRequest; h != nil {
		h(ctx, &domain.RequestEvent{EventBase: w.base(domain.EventRequest, resource)})
	}
}

func (w *Watcher) emitCheck(ctx context.Context, resource string, supported bool) {
	if h := w.hooks.OnCheck; h != nil {
		h(ctx, &domain.CheckEvent{
			EventBase: w.base(domain.EventCheck, resource),
			Supported: supported,
		})
	}
}

func (w *Watcher) emitAttempt(ctx context.Context, resource string) {
	if h := w.hooks.OnAttempt; h != nil {
		h(ctx, &domain.AttemptEvent{EventBase: w.base(domain.EventAttempt, resource)})
	}
}

func (w *Watcher) emitOutcome(ctx context.Context, out domain.Outcome) {
	if h := w.hooks.OnOutcome; h != nil {
		h(ctx, &domain.OutcomeEvent{
			EventBase: w.base(domain.EventOutcome, out.Resource),
			Outcome:   out,
		})
	}
}
