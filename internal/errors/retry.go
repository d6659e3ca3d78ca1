package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"math/rand/v2"
	"time"
)

// RetryConfig is an exponential backoff policy. MaxRetries counts the
// attempts after the first one.
type RetryConfig struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration // 0 means uncapped
	Multiplier   float64

	// Jitter scales each wait by a random factor in [0.5, 1.0).
	Jitter bool

	// ShouldRetry filters errors worth another attempt. Nil retries all of
	// them. Context errors are never retried.
	ShouldRetry func(err error) bool

	// OnRetry runs before each wait. attempt is the 1-based number of the
	// attempt that just failed.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// DefaultRetryConfig waits 0.5s, 1s, 2s between four attempts.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:   3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     8 * time.Second,
		Multiplier:   2,
	}
}

// delay is the un-jittered wait after the given failed attempt (0-based).
func (c RetryConfig) delay(attempt int) time.Duration {
	d := float64(c.InitialDelay)
	for range attempt {
		d *= c.Multiplier
		if c.MaxDelay > 0 && d >= float64(c.MaxDelay) {
			return c.MaxDelay
		}
	}
	return time.Duration(d)
}

func (c RetryConfig) retryable(err error) bool {
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return c.ShouldRetry == nil || c.ShouldRetry(err)
}

// Retry runs fn under cfg.
func Retry(ctx context.Context, cfg RetryConfig, fn func() error) error {
	_, err := RetryWithResult(ctx, cfg, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// RetryWithResult runs fn until it succeeds, returns a non-retryable error,
// or the retries run out. Exhaustion wraps the last error. A done ctx
// returns ctx.Err() without another attempt.
func RetryWithResult[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error)) (T, error) {
	var zero T
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		v, err := fn()
		switch {
		case err == nil:
			return v, nil
		case !cfg.retryable(err):
			return zero, err
		case attempt >= cfg.MaxRetries:
			return zero, fmt.Errorf("failed after %d retries: %w", cfg.MaxRetries, err)
		}

		wait := cfg.delay(attempt)
		if cfg.Jitter {
			wait = time.Duration(float64(wait) * (0.5 + rand.Float64()/2))
		}
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt+1, err, wait)
		}

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return zero, ctx.Err()
		case <-t.C:
		}
	}
}
