package payment

import (
	"context"
	"time"
)

// RetryPolicy is a bounded fixed-spacing retry budget. Polling loops take an
// explicit policy instead of ad hoc sleeps so budgets are testable and
// tunable independently of the loops.
type RetryPolicy struct {
	MaxAttempts int
	Interval    time.Duration
}

// Defaults match the collaborators' observed settlement latencies:
// confirmation within ~30s, token balance visibility within ~20s.
var (
	DefaultConfirmationPolicy = RetryPolicy{MaxAttempts: 30, Interval: time.Second}
	DefaultBalancePolicy      = RetryPolicy{MaxAttempts: 10, Interval: 2 * time.Second}
)

// Wait blocks for one retry interval or until the context is cancelled.
func (p RetryPolicy) Wait(ctx context.Context) error {
	if p.Interval <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(p.Interval)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
