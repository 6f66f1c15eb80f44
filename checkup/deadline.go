package checkup

import (
	"context"
	"errors"
	"time"
)

// DefaultBudget leaves a margin under the host's 30s execution ceiling so
// the terminal error write can still land after an abort.
const DefaultBudget = 25 * time.Second

// NewDeadline returns a context that aborts once the budget elapses. Every
// suspending call in the pipeline (image fetches, the inference call, store
// writes) runs under it, so a fired deadline makes whatever is in flight
// fail fast instead of hanging until the host kills the process. The stop
// func must be deferred so the timer cannot fire after normal completion.
func NewDeadline(parent context.Context, budget time.Duration) (context.Context, context.CancelFunc) {
	if budget <= 0 {
		budget = DefaultBudget
	}
	return context.WithTimeout(parent, budget)
}

// IsAborted reports whether err originates from the deadline or an explicit
// cancellation rather than from the remote call itself.
func IsAborted(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
