package llm

import (
	"context"
	"errors"
	"time"
)

// retryConfig bounds the retry loop used for transient provider failures.
type retryConfig struct {
	maxAttempts  int
	initialDelay time.Duration
	maxDelay     time.Duration
	factor       float64
}

func defaultRetryConfig() retryConfig {
	return retryConfig{
		maxAttempts:  3,
		initialDelay: time.Second,
		maxDelay:     10 * time.Second,
		factor:       2.0,
	}
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }

func (e *permanentError) Unwrap() error { return e.err }

// permanent marks an error as non-retryable. A completion that arrived but
// cannot be parsed is the normalizer's problem, not a retry trigger.
func permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

func isPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// withRetry runs op with bounded exponential backoff. Permanent errors and
// context cancellation short-circuit the loop.
func withRetry(ctx context.Context, cfg retryConfig, op func() error) error {
	if cfg.maxAttempts <= 0 {
		cfg.maxAttempts = 1
	}

	delay := cfg.initialDelay
	var lastErr error

	for attempt := 1; attempt <= cfg.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op()
		if lastErr == nil {
			return nil
		}

		if isPermanent(lastErr) {
			var p *permanentError
			errors.As(lastErr, &p)
			return p.err
		}

		if attempt >= cfg.maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay = time.Duration(float64(delay) * cfg.factor)
		if delay > cfg.maxDelay {
			delay = cfg.maxDelay
		}
	}

	return lastErr
}
