package observability

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/usher/pkg/domain"
)

// Metrics exposes the open cycle as Prometheus collectors.
type Metrics struct {
	outcomes  *prometheus.CounterVec
	checks    *prometheus.CounterVec
	conflicts prometheus.Counter
	duration  prometheus.Histogram

	mu        sync.Mutex
	attemptAt time.Time
}

// NewMetrics builds the collectors and registers them with reg. A nil
// registerer leaves the collectors unregistered, which tests use to avoid
// global state.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "usher",
			Name:      "outcomes_total",
			Help:      "Classified outcomes by kind.",
		}, []string{"kind"}),
		checks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "usher",
			Name:      "capability_checks_total",
			Help:      "Capability checks by verdict.",
		}, []string{"verdict"}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "usher",
			Name:      "conflicts_total",
			Help:      "Requests ignored because an attempt was already in flight.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "usher",
			Name:      "attempt_duration_seconds",
			Help:      "Wall time from attempt start to classified outcome.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.outcomes, m.checks, m.conflicts, m.duration)
	}
	return m
}

// Hooks returns the hook set feeding these collectors. The duration
// histogram pairs each attempt with its outcome; the single-flight rule
// guarantees there is never more than one attempt to pair.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCheck: func(_ context.Context, e *domain.CheckEvent) {
			verdict := "unsupported"
			if e.Supported {
				verdict = "supported"
			}
			m.checks.WithLabelValues(verdict).Inc()
		},
		OnAttempt: func(_ context.Context, e *domain.AttemptEvent) {
			m.mu.Lock()
			m.attemptAt = e.Timestamp
			m.mu.Unlock()
		},
		OnOutcome: func(_ context.Context, e *domain.OutcomeEvent) {
			m.outcomes.WithLabelValues(string(e.Outcome.Kind)).Inc()
			if e.Outcome.Kind == domain.KindUnsupported {
				return
			}
			m.mu.Lock()
			started := m.attemptAt
			m.attemptAt = time.Time{}
			m.mu.Unlock()
			if !started.IsZero() {
				m.duration.Observe(e.Outcome.At.Sub(started).Seconds())
			}
		},
		OnConflict: func(_ context.Context, _ *domain.ConflictEvent) {
			m.conflicts.Inc()
		},
	}
}
