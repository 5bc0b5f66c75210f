package brief

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/ask-andrew/360brief-sub007/pkg/ai"
	brieferrors "github.com/ask-andrew/360brief-sub007/pkg/errors"
)

// Tone names accepted by NewPolisher.
const (
	ToneNone  = "none"
	TonePlain = "plain"
	ToneAI    = "ai"
)

// Polisher rewrites one narrative string. Implementations must not change
// the facts the text states.
type Polisher interface {
	Tone() string
	Polish(ctx context.Context, text string) (string, error)
}

// NoopPolisher leaves text unchanged. A Synthesizer with a NoopPolisher
// records no Polish block.
type NoopPolisher struct{}

// Tone implements Polisher.
func (NoopPolisher) Tone() string { return ToneNone }

// Polish implements Polisher.
func (NoopPolisher) Polish(_ context.Context, text string) (string, error) { return text, nil }

// PlainPolisher normalizes whitespace, capitalizes the first letter and
// ends the text with punctuation. Applying it twice gives the same result
// as applying it once.
type PlainPolisher struct{}

// Tone implements Polisher.
func (PlainPolisher) Tone() string { return TonePlain }

// Polish implements Polisher.
func (PlainPolisher) Polish(_ context.Context, text string) (string, error) {
	return plainText(text), nil
}

func plainText(text string) string {
	s := strings.Join(strings.Fields(text), " ")
	if s == "" {
		return s
	}

	r, size := utf8.DecodeRuneInString(s)
	if unicode.IsLower(r) {
		s = string(unicode.ToUpper(r)) + s[size:]
	}

	last, _ := utf8.DecodeLastRuneInString(s)
	if !strings.ContainsRune(".!?)", last) {
		s += "."
	}
	return s
}

// AIPolisher asks a language model to rewrite text in a crisper register.
// Each call runs under the retry executor.
type AIPolisher struct {
	provider ai.Provider
	retry    brieferrors.RetryConfig
	logger   *slog.Logger
}

// NewAIPolisher creates an AIPolisher.
func NewAIPolisher(provider ai.Provider, retry brieferrors.RetryConfig, logger *slog.Logger) *AIPolisher {
	if retry.OnRetry == nil && logger != nil {
		retry.OnRetry = func(attempt int, delay time.Duration, err error) {
			logger.Debug("retrying polish", "attempt", attempt+1, "delay", delay, "error", err)
		}
	}
	return &AIPolisher{provider: provider, retry: retry, logger: logger}
}

// Tone implements Polisher.
func (p *AIPolisher) Tone() string { return ToneAI }

// Polish implements Polisher. The reply is passed through PlainPolisher so
// repeated passes converge on the same shape.
func (p *AIPolisher) Polish(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}
	if p.provider == nil || !p.provider.IsAvailable() {
		return "", brieferrors.NewUpstreamError("none", "Polish", "no AI provider available")
	}

	reply, err := brieferrors.RunWithRetry(ctx, p.retry, func(ctx context.Context) (string, error) {
		return ai.Ask(ctx, p.provider, SystemPromptPolish, BuildPolishPrompt(text))
	})
	if err != nil {
		return "", brieferrors.NewUpstreamErrorWithCause(p.provider.Name(), "Polish", "rewrite failed", err)
	}

	reply = strings.Trim(reply, "\"'` \n")
	if reply == "" {
		return "", brieferrors.NewUpstreamError(p.provider.Name(), "Polish", "empty rewrite")
	}
	return plainText(reply), nil
}

// NewPolisher returns the polisher for tone. The ai tone needs a provider.
func NewPolisher(tone string, provider ai.Provider, retry brieferrors.RetryConfig, logger *slog.Logger) (Polisher, error) {
	switch tone {
	case "", ToneNone:
		return NoopPolisher{}, nil
	case TonePlain:
		return PlainPolisher{}, nil
	case ToneAI:
		if provider == nil {
			return nil, brieferrors.NewConfigError("brief.tone", "ai tone requires an AI provider")
		}
		return NewAIPolisher(provider, retry, logger), nil
	default:
		return nil, brieferrors.NewConfigError("brief.tone", "unknown tone "+tone)
	}
}

// applyPolish runs polisher over every narrative field of b. If any field
// fails, every field is restored and the failure is recorded.
func applyPolish(ctx context.Context, polisher Polisher, b *BriefingData) {
	if polisher == nil {
		return
	}
	if _, noop := polisher.(NoopPolisher); noop {
		return
	}

	fields := b.narratives()
	original := make([]string, len(fields))
	for i, f := range fields {
		original[i] = *f
	}

	b.Polish = &Polish{Tone: polisher.Tone(), Fields: len(fields)}
	for _, f := range fields {
		polished, err := polisher.Polish(ctx, *f)
		if err != nil {
			for i, f := range fields {
				*f = original[i]
			}
			b.Polish.Error = err.Error()
			return
		}
		*f = polished
	}
	b.Polish.Applied = true
}
