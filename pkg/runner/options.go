package runner

import "log/slog"

// Option defines a functional option for configuring the Runner.
type Option[S, A any] func(*Runner[S, A])

// WithLogger configures the structured logger.
func WithLogger[S, A any](logger *slog.Logger) Option[S, A] {
	return func(r *Runner[S, A]) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithOnChange registers a callback invoked with a state snapshot after every
// dispatch. The callback runs outside the runner lock, so it may call State
// or Dispatch, but slow callbacks delay outcome delivery.
func WithOnChange[S, A any](fn func(S)) Option[S, A] {
	return func(r *Runner[S, A]) {
		r.onChange = fn
	}
}
