package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/usher/pkg/domain"
)

// Combine fans lifecycle events out to every given hook set, in order. Nil
// members are skipped, so partially populated sets compose cleanly.
func Combine(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRequest: func(ctx context.Context, e *domain.RequestEvent) {
			for _, h := range hooks {
				if h.OnRequest != nil {
					h.OnRequest(ctx, e)
				}
			}
		},
		OnCheck: func(ctx context.Context, e *domain.CheckEvent) {
			for _, h := range hooks {
				if h.OnCheck != nil {
					h.OnCheck(ctx, e)
				}
			}
		},
		OnAttempt: func(ctx context.Context, e *domain.AttemptEvent) {
			for _, h := range hooks {
				if h.OnAttempt != nil {
					h.OnAttempt(ctx, e)
				}
			}
		},
		OnOutcome: func(ctx context.Context, e *domain.OutcomeEvent) {
			for _, h := range hooks {
				if h.OnOutcome != nil {
					h.OnOutcome(ctx, e)
				}
			}
		},
		OnConflict: func(ctx context.Context, e *domain.ConflictEvent) {
			for _, h := range hooks {
				if h.OnConflict != nil {
					h.OnConflict(ctx, e)
				}
			}
		},
	}
}

// LogHooks returns a hook set that writes every lifecycle event to the
// logger. Outcomes log at Info, conflicts at Warn, the rest at Debug.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRequest: func(ctx context.Context, e *domain.RequestEvent) {
			logger.DebugContext(ctx, "request observed", slog.String("resource", e.Resource))
		},
		OnCheck: func(ctx context.Context, e *domain.CheckEvent) {
			logger.DebugContext(ctx, "capability checked",
				slog.String("resource", e.Resource),
				slog.Bool("supported", e.Supported))
		},
		OnAttempt: func(ctx context.Context, e *domain.AttemptEvent) {
			logger.DebugContext(ctx, "open attempt started", slog.String("resource", e.Resource))
		},
		OnOutcome: func(ctx context.Context, e *domain.OutcomeEvent) {
			logger.InfoContext(ctx, "outcome",
				slog.String("resource", e.Resource),
				slog.String("kind", string(e.Outcome.Kind)),
				slog.String("detail", e.Outcome.Detail))
		},
		OnConflict: func(ctx context.Context, e *domain.ConflictEvent) {
			logger.WarnContext(ctx, "request ignored, attempt in flight",
				slog.String("resource", e.Resource),
				slog.String("active", e.Active))
		},
	}
}
