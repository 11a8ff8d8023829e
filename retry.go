package bearchat

import (
	"context"
	"time"
)

// RetryConfig holds configuration for retry behavior.
type RetryConfig struct {
	MaxRetries int           // Additional attempts after the first failure
	Delay      time.Duration // Fixed wait between attempts
}

// DefaultRetryConfig returns the remote translator's retry policy:
// two retries, one second apart.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 2,
		Delay:      1 * time.Second,
	}
}

// RetryFunc is a function that can be retried.
type RetryFunc[T any] func() (T, error)

// WithRetry runs fn until it succeeds or the retry budget is spent, waiting
// cfg.Delay between attempts. Every error is retried. It returns the number
// of attempts made alongside the last result.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, fn RetryFunc[T]) (T, int, error) {
	var lastErr error
	var zero T

	attempts := 0
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return zero, attempts, ctx.Err()
		default:
		}

		attempts++
		result, err := fn()
		if err == nil {
			return result, attempts, nil
		}
		lastErr = err

		// Don't sleep after the last attempt
		if attempt < cfg.MaxRetries {
			timer := time.NewTimer(cfg.Delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, attempts, ctx.Err()
			case <-timer.C:
			}
		}
	}

	return zero, attempts, lastErr
}
