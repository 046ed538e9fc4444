package service

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	"github.com/aretw0/usher"
	"github.com/aretw0/usher/internal/logging"
	"github.com/aretw0/usher/pkg/adapters/memory"
	"github.com/aretw0/usher/pkg/domain"
	"github.com/aretw0/usher/pkg/ports"
)

// DefaultGateTTL bounds how long a crashed replica can hold the gate slot.
const DefaultGateTTL = 30 * time.Second

// Service orchestrates open cycles on behalf of the transports. It owns the
// controller, the outcome journal and the optional cross-instance gate.
type Service struct {
	ctrl    *usher.Controller
	journal ports.OutcomeJournal

	gate    ports.Gate
	gateTTL time.Duration
	logger  *slog.Logger

	// Controller collaborators collected from options before New builds it.
	hooks     domain.LifecycleHooks
	hasHooks  bool
	scheduler ports.Scheduler
}

// Option configures the Service.
type Option func(*Service)

// WithJournal sets the outcome journal. Defaults to an in-memory ring.
func WithJournal(journal ports.OutcomeJournal) Option {
	return func(s *Service) {
		s.journal = journal
	}
}

// WithGate enables distributed single-flight across replicas.
func WithGate(gate ports.Gate) Option {
	return func(s *Service) {
		s.gate = gate
	}
}

// WithGateTTL overrides the gate slot TTL.
func WithGateTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.gateTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Service and its controller.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLifecycleHooks forwards observability hooks to the controller.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Service) {
		s.hooks = hooks
		s.hasHooks = true
	}
}

// WithScheduler forwards a scheduler to the controller.
func WithScheduler(sched ports.Scheduler) Option {
	return func(s *Service) {
		s.scheduler = sched
	}
}

// New assembles a Service around the host capability. The opener is required;
// the journal defaults to an in-memory ring and the gate is off unless set.
func New(opener ports.Opener, opts ...Option) (*Service, error) {
	s := &Service{
		gateTTL: DefaultGateTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.journal == nil {
		s.journal = memory.NewJournal()
	}

	ctrlOpts := []usher.Option{
		usher.WithJournal(s.journal),
		usher.WithLogger(s.logger),
	}
	if s.hasHooks {
		ctrlOpts = append(ctrlOpts, usher.WithLifecycleHooks(s.hooks))
	}
	if s.scheduler != nil {
		ctrlOpts = append(ctrlOpts, usher.WithScheduler(s.scheduler))
	}

	ctrl, err := usher.New(opener, ctrlOpts...)
	if err != nil {
		return nil, err
	}
	s.ctrl = ctrl
	return s, nil
}

// Open runs one full cycle for the resource and returns its outcome. A failed
// attempt is outcome data; the error return is reserved for refusals to start
// (invalid resource, attempt already in flight, gate held elsewhere).
func (s *Service) Open(ctx context.Context, resource string) (domain.Outcome, error) {
	if resource == "" {
		return domain.Outcome{}, domain.ErrInvalidResource
	}
	if s.gate != nil {
		release, ok, err := s.gate.TryAcquire(ctx, resource, s.gateTTL)
		if err != nil {
			return domain.Outcome{}, fmt.Errorf("failed to acquire gate: %w", err)
		}
		if !ok {
			return domain.Outcome{}, domain.ErrBusy
		}
		defer func() {
			if err := release(ctx); err != nil {
				s.logger.Warn("Failed to release gate slot (will expire via TTL)",
					"resource", resource,
					"err", err,
				)
			}
		}()
	}

	return s.ctrl.Open(ctx, resource)
}

// Status reports the current pending state: the resource of the outstanding
// attempt, or idle.
func (s *Service) Status(_ context.Context) (domain.Request, error) {
	if resource, busy := s.ctrl.Active(); busy {
		return domain.Pending(resource), nil
	}
	return domain.Idle(), nil
}

// Recent returns recorded outcomes, newest first, up to limit.
func (s *Service) Recent(ctx context.Context, limit int) ([]domain.Outcome, error) {
	return s.journal.Recent(ctx, limit)
}

// Controller returns the underlying controller.
func (s *Service) Controller() *usher.Controller {
	return s.ctrl
}
