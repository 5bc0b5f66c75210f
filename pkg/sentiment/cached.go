package sentiment

import (
	"context"
	"time"

	"github.com/ask-andrew/360brief-sub007/pkg/cache"
)

// Cached memoizes another analyzer's results by text digest.
type Cached struct {
	analyzer Analyzer
	memo     *cache.Memoizer[Result]
	ttl      time.Duration
}

// NewCached wraps analyzer with store. Results live for ttl; ttl <= 0 keeps
// them until the store is cleared.
func NewCached(analyzer Analyzer, store cache.Store[Result], ttl time.Duration) *Cached {
	return &Cached{analyzer: analyzer, memo: cache.NewMemoizer(store), ttl: ttl}
}

// Analyze returns the cached result for text or computes and stores it.
// Failures are not cached.
func (c *Cached) Analyze(ctx context.Context, text string) (Result, error) {
	if err := requireText(text); err != nil {
		return Result{}, err
	}

	key, err := cache.Key("sentiment", text)
	if err != nil {
		return Result{}, err
	}

	res, _, err := c.memo.Do(ctx, key, c.ttl, func(ctx context.Context) (Result, error) {
		return c.analyzer.Analyze(ctx, text)
	})
	return res, err
}
