package llm

import (
	"context"
	"fmt"
	"time"
)

// RetryPolicy defines retry behavior for a single model attempt loop.
type RetryPolicy struct {
	MaxRetries int           // Maximum number of attempts per model (1 = no retries)
	BaseDelay  time.Duration // Backoff unit; delay before attempt n+1 is n*BaseDelay
	MaxDelay   time.Duration // Maximum delay cap
}

// DefaultRetryPolicy returns the retry policy used when none is configured.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 3,
		BaseDelay:  time.Second,
		MaxDelay:   15 * time.Second,
	}
}

// RetryableFunc is a function that can be retried.
type RetryableFunc[T any] func(ctx context.Context) (T, error)

// RetryWithPolicy executes fn with retry logic based on the policy.
// Attempts are numbered from 1. Returns the result on success, or a
// RetryExhaustedError wrapping the last error once attempts run out.
func RetryWithPolicy[T any](
	ctx context.Context,
	policy RetryPolicy,
	model string,
	fn RetryableFunc[T],
	onAttempt func(attempt int, err error),
) (T, error) {
	var zero T

	maxAttempts := policy.MaxRetries
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err := fn(ctx)
		if onAttempt != nil {
			onAttempt(attempt, err)
		}
		if err == nil {
			return result, nil
		}
		lastErr = err

		class := ClassifyBackendError(err)
		if class == RetryClassNonRetryable {
			return zero, &RetryExhaustedError{Model: model, Err: err, Attempts: attempt}
		}
		// "maybe" class errors get at most two attempts
		if class == RetryClassMaybe && attempt >= 2 {
			return zero, &RetryExhaustedError{Model: model, Err: err, Attempts: attempt}
		}
		if attempt == maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		case <-time.After(backoffDelay(policy, attempt, err)):
			// Continue to next attempt
		}
	}

	return zero, &RetryExhaustedError{Model: model, Err: lastErr, Attempts: maxAttempts}
}

// backoffDelay computes the delay after a failed attempt (1-indexed).
func backoffDelay(policy RetryPolicy, attempt int, err error) time.Duration {
	// Respect Retry-After when the backend supplies one
	if retryAfter := ExtractRetryAfter(err); retryAfter > 0 {
		if policy.MaxDelay > 0 && retryAfter > policy.MaxDelay {
			return policy.MaxDelay
		}
		return retryAfter
	}

	delay := time.Duration(attempt) * policy.BaseDelay
	if policy.MaxDelay > 0 && delay > policy.MaxDelay {
		delay = policy.MaxDelay
	}
	return delay
}
