package sentiment

import (
	"context"
	"log/slog"
	"time"

	brieferrors "github.com/ask-andrew/360brief-sub007/pkg/errors"
)

// Resilient tries a primary analyzer under the retry executor and answers
// from the fallback analyzer when the primary fails for any reason.
// The fallback is never retried.
type Resilient struct {
	primary  Analyzer
	fallback Analyzer
	retry    brieferrors.RetryConfig
	logger   *slog.Logger
}

// NewResilient composes primary and fallback. A nil primary means every
// call goes straight to the fallback; a nil fallback means the lexicon
// strategy.
func NewResilient(primary, fallback Analyzer, retry brieferrors.RetryConfig, logger *slog.Logger) *Resilient {
	if fallback == nil {
		fallback = NewFallbackStrategy()
	}
	if retry.OnRetry == nil && logger != nil {
		retry.OnRetry = func(attempt int, delay time.Duration, err error) {
			logger.Debug("retrying sentiment analysis", "attempt", attempt+1, "delay", delay, "error", err)
		}
	}
	return &Resilient{primary: primary, fallback: fallback, retry: retry, logger: logger}
}

// Analyze returns the primary result, or the fallback result when the
// primary is absent or failed. Empty text fails with an invalid input error
// and a cancelled context fails with the context error.
func (r *Resilient) Analyze(ctx context.Context, text string) (Result, error) {
	if err := requireText(text); err != nil {
		return Result{}, err
	}

	if r.primary != nil {
		res, err := brieferrors.RunWithRetry(ctx, r.retry, func(ctx context.Context) (Result, error) {
			return r.primary.Analyze(ctx, text)
		})
		if err == nil {
			return res, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, brieferrors.Wrap(ctxErr, "sentiment analysis cancelled")
		}
		r.logDebug("sentiment primary failed, using fallback", "kind", string(brieferrors.KindOf(err)), "error", err)
	}

	return r.fallback.Analyze(ctx, text)
}

func (r *Resilient) logDebug(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}
