// Package sentiment classifies free text as positive, neutral or negative.
//
// Two strategies satisfy the same Analyzer contract: AIStrategy asks a
// language model provider, FallbackStrategy scores text against a built-in
// lexicon. Resilient composes them so callers always get a result, and
// Cached memoizes results in a volatile cache.
package sentiment

import (
	"context"
	"strings"

	brieferrors "github.com/ask-andrew/360brief-sub007/pkg/errors"
)

// Label is a sentiment classification.
type Label string

// Sentiment labels.
const (
	Positive Label = "positive"
	Neutral  Label = "neutral"
	Negative Label = "negative"
)

// Valid reports whether l is a known label.
func (l Label) Valid() bool {
	return l == Positive || l == Neutral || l == Negative
}

// Method records which strategy produced a result.
type Method string

// Analysis methods.
const (
	MethodAI       Method = "ai"
	MethodFallback Method = "fallback"
)

// Result is the outcome of analyzing one text.
type Result struct {
	Sentiment Label   `json:"sentiment" yaml:"sentiment" toml:"sentiment"`
	Score     float64 `json:"score" yaml:"score" toml:"score"` // In [-1, 1]
	Method    Method  `json:"method" yaml:"method" toml:"method"`
}

// Degraded reports whether the result came from the fallback path.
func (r Result) Degraded() bool { return r.Method == MethodFallback }

// Analyzer classifies a single text.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (Result, error)
}

// AnalyzerFunc adapts a function to the Analyzer interface.
type AnalyzerFunc func(ctx context.Context, text string) (Result, error)

// Analyze calls f.
func (f AnalyzerFunc) Analyze(ctx context.Context, text string) (Result, error) {
	return f(ctx, text)
}

// Label thresholds shared by both strategies.
const (
	positiveThreshold = 0.05
	negativeThreshold = -0.05
)

// LabelFor maps a score to its label.
func LabelFor(score float64) Label {
	switch {
	case score >= positiveThreshold:
		return Positive
	case score <= negativeThreshold:
		return Negative
	default:
		return Neutral
	}
}

func requireText(text string) error {
	if strings.TrimSpace(text) == "" {
		return brieferrors.NewInvalidInputError("text", "text to analyze is empty")
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
