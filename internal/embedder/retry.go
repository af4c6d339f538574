package embedder

import (
	"context"
	"time"
)

// retryPolicy bounds how often and how long a remote provider call is
// retried. The delay doubles between attempts, capped at maxDelay.
type retryPolicy struct {
	attempts  int
	baseDelay time.Duration
	maxDelay  time.Duration
}

// defaultRetry covers the remote providers' transient failures (rate
// limits, flaky connections) while keeping the worst case well inside
// CallTimeout.
var defaultRetry = retryPolicy{
	attempts:  MaxRetries,
	baseDelay: 100 * time.Millisecond,
	maxDelay:  5 * time.Second,
}

// retryWithBackoff runs fn up to p.attempts times. A canceled context
// stops the retries immediately with the context's error.
func retryWithBackoff[T any](ctx context.Context, p retryPolicy, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	delay := p.baseDelay
	for attempt := 1; attempt <= p.attempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		if attempt == p.attempts {
			break
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if delay > p.maxDelay {
			delay = p.maxDelay
		}
	}
	return zero, lastErr
}
