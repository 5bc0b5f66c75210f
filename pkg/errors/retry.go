package errors

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"github.com/ask-andrew/360brief-sub007/pkg/clock"
)

// Retry configuration defaults.
const (
	DefaultRetries     = 3
	DefaultBaseDelay   = 500 * time.Millisecond
	DefaultMaxDelay    = 30 * time.Second
	DefaultJitterRatio = 0.2 // Delay varies by ±20%
)

// RetryConfig holds configuration for retry behavior.
type RetryConfig struct {
	Retries     int           // Retries after the first attempt
	BaseDelay   time.Duration // Nominal delay before the first retry
	MaxDelay    time.Duration // Cap on the nominal delay; zero means no cap
	JitterRatio float64       // Random perturbation ratio in [0, 1)

	// Clock drives backoff waits. Nil means the real clock.
	Clock clock.Clock

	// OnRetry, if set, is called before each backoff wait.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// DefaultRetryConfig returns a RetryConfig with sensible defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		Retries:     DefaultRetries,
		BaseDelay:   DefaultBaseDelay,
		MaxDelay:    DefaultMaxDelay,
		JitterRatio: DefaultJitterRatio,
	}
}

// RunWithRetry executes fn up to cfg.Retries+1 times with exponential backoff
// and jitter between attempts.
//
// It stops without retrying when the error signals authorization denial or
// invalid input. When every attempt fails it returns an *ExhaustedError that
// reads and unwraps as the last error. A successful result is never retried.
func RunWithRetry[T any](ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}

	retries := max(cfg.Retries, 0)

	for attempt := 0; attempt <= retries; attempt++ {
		// Check context before each attempt
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return zero, Wrapf(lastErr, "context cancelled after %d attempts", attempt)
			}
			return zero, Wrap(err, "context cancelled before retry")
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if isTerminal(lastErr) {
			return zero, lastErr
		}

		// Don't wait after the last attempt
		if attempt == retries {
			break
		}

		delay := CalculateBackoff(cfg.BaseDelay, cfg.MaxDelay, attempt, cfg.JitterRatio)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt+1, delay, lastErr)
		}

		select {
		case <-ctx.Done():
			return zero, Wrapf(lastErr, "context cancelled during retry backoff (attempt %d/%d)", attempt+1, retries)
		case <-clk.After(delay):
		}
	}

	return zero, &ExhaustedError{Attempts: retries + 1, Last: lastErr}
}

// Retry is RunWithRetry for operations without a result value.
func Retry(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) error) error {
	_, err := RunWithRetry(ctx, cfg, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// isTerminal reports whether retrying err cannot help.
func isTerminal(err error) bool {
	return IsAuthorizationDenied(err) || IsInvalidInput(err) || IsUnsupportedStyle(err)
}

// CalculateBackoff computes the delay for a retry attempt using exponential backoff with jitter.
// Formula: delay = min(base * 2^attempt, max) * (1 + uniform(-jitter, jitter))
// For jitter=0.2, this produces a multiplier range of [0.8, 1.2].
func CalculateBackoff(base, maxDelay time.Duration, attempt int, jitter float64) time.Duration {
	expDelay := float64(base) * math.Pow(2, float64(attempt))

	if maxDelay > 0 && expDelay > float64(maxDelay) {
		expDelay = float64(maxDelay)
	}

	jitterMultiplier := 1.0 + jitter*(2*rand.Float64()-1)
	return time.Duration(expDelay * jitterMultiplier)
}
