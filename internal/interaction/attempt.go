// Package interaction drives the reviews page through a ports.Surface: consent
// dismissal, context selection, panel activation and lazy-load scrolling.
//
// Every action here is optional. Failures are logged and reported as a false
// return, never as an error, so a single bad frame or detached node cannot
// abort the run.
package interaction

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

var errNotYet = errors.New("condition not met")

// Attempt runs an optional action and reports whether it succeeded.
func Attempt(ctx context.Context, log *slog.Logger, what string, action func(context.Context) error) bool {
	if err := action(ctx); err != nil {
		if log != nil {
			log.Debug("optional action failed", "action", what, "error", err)
		}
		return false
	}
	return true
}

// Condition is polled by WaitUntil.
type Condition func(ctx context.Context) (bool, error)

// WaitUntil polls cond with exponential backoff until it holds or budget elapses.
// Errors from cond count as "not yet". It returns true when cond held.
func WaitUntil(ctx context.Context, budget time.Duration, cond Condition) bool {
	if budget <= 0 || cond == nil {
		return false
	}

	waitCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 50 * time.Millisecond
	policy.MaxInterval = maxDuration(budget/4, policy.InitialInterval)
	policy.MaxElapsedTime = budget

	op := func() error {
		ok, err := cond(waitCtx)
		if err != nil {
			return err
		}
		if !ok {
			return errNotYet
		}
		return nil
	}

	return backoff.Retry(op, backoff.WithContext(policy, waitCtx)) == nil
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}
