// Package retry implements the mutation pipeline: a pure bounded-retry
// utility with exponential backoff, and a Pipeline wrapper exposing the
// busy/attempt/last-error state the UI consumes.
package retry

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultMaxAttempts bounds a retry sequence unless the policy says
// otherwise.
const DefaultMaxAttempts = 3

// Policy describes how an operation is retried.
type Policy struct {
	// MaxAttempts is the total number of invocations, first try
	// included.
	MaxAttempts int

	// Backoff returns the wait before retrying after the given attempt
	// (1-based). Nil means ExponentialBackoff.
	Backoff func(attempt int) time.Duration
}

// DefaultPolicy is three attempts with 1s, 2s waits between them.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: DefaultMaxAttempts, Backoff: ExponentialBackoff}
}

// ExponentialBackoff waits 2^(attempt-1) seconds: 1s, 2s, 4s, ...
// No jitter.
func ExponentialBackoff(attempt int) time.Duration {
	return time.Duration(1<<(attempt-1)) * time.Second
}

// Do invokes op until it succeeds or the policy is exhausted, waiting
// between attempts. The wait is context-aware, so a cancelled context
// aborts the sequence between attempts. The last error is returned on
// exhaustion. Operations must be safely re-runnable.
func Do[T any](ctx context.Context, policy Policy, op func() (T, error)) (T, error) {
	var zero T

	maxAttempts := policy.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	backoff := policy.Backoff
	if backoff == nil {
		backoff = ExponentialBackoff
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := op()
		if err == nil {
			if attempt > 1 {
				log.Debug().Int("attempt", attempt).Msg("operation succeeded after retry")
			}
			return result, nil
		}
		lastErr = err

		if attempt == maxAttempts {
			break
		}

		delay := backoff(attempt)
		log.Debug().
			Int("attempt", attempt).
			Int("max_attempts", maxAttempts).
			Dur("delay", delay).
			Err(err).
			Msg("operation failed, retrying")

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}

	return zero, lastErr
}
