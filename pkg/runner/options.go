package runner

import (
	"log/slog"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithSteps splits the form into wizard steps. Each step is validated on
// its own before the next one is asked. Fields left out of every step are
// never prompted.
func WithSteps(steps ...[]string) Option {
	return func(r *Runner) {
		r.steps = steps
	}
}

// WithAutosave snapshots the form after every completed step and when the
// fill is aborted (default: true). It has no effect on forms without a key.
func WithAutosave(enabled bool) Option {
	return func(r *Runner) {
		r.autosave = enabled
	}
}

// WithMaxAttempts bounds how many times a step is asked before Fill gives up
// with an *formstate.InvalidError. Zero means unlimited.
func WithMaxAttempts(n int) Option {
	return func(r *Runner) {
		r.maxAttempts = n
	}
}

// WithSignals makes Fill stop on SIGINT/SIGTERM.
func WithSignals(enabled bool) Option {
	return func(r *Runner) {
		r.signals = enabled
	}
}

// WithDiscardOnSubmit removes the stored snapshot once the form validates.
func WithDiscardOnSubmit(enabled bool) Option {
	return func(r *Runner) {
		r.discardOnSubmit = enabled
	}
}
