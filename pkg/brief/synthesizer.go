package brief

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/ask-andrew/360brief-sub007/pkg/cache"
	"github.com/ask-andrew/360brief-sub007/pkg/clock"
	brieferrors "github.com/ask-andrew/360brief-sub007/pkg/errors"
	"github.com/ask-andrew/360brief-sub007/pkg/insights"
	"github.com/ask-andrew/360brief-sub007/pkg/unified"
)

// Options configures a Synthesizer.
type Options struct {
	Styles    []Style                    // Enabled styles; empty enables AllStyles
	Extractor *insights.Extractor        // Nil uses an extractor without sentiment
	Polisher  Polisher                   // Nil means NoopPolisher
	Cache     cache.Store[*BriefingData] // Optional brief memoization
	CacheTTL  time.Duration
	Clock     clock.Clock
	Logger    *slog.Logger
}

// Synthesizer builds briefs. It is safe for concurrent use; calls share
// nothing but the optional cache.
type Synthesizer struct {
	styles    []Style
	extractor *insights.Extractor
	polisher  Polisher
	memo      *cache.Memoizer[*BriefingData]
	ttl       time.Duration
	clock     clock.Clock
	logger    *slog.Logger
}

// NewSynthesizer creates a Synthesizer from opts.
func NewSynthesizer(opts Options) *Synthesizer {
	s := &Synthesizer{
		styles:    opts.Styles,
		extractor: opts.Extractor,
		polisher:  opts.Polisher,
		ttl:       opts.CacheTTL,
		clock:     opts.Clock,
		logger:    opts.Logger,
	}
	if len(s.styles) == 0 {
		s.styles = AllStyles
	}
	if s.extractor == nil {
		s.extractor = insights.NewExtractor(insights.Options{Logger: opts.Logger})
	}
	if s.polisher == nil {
		s.polisher = NoopPolisher{}
	}
	if s.clock == nil {
		s.clock = clock.Real()
	}
	if opts.Cache != nil {
		s.memo = cache.NewMemoizer(opts.Cache)
	}
	return s
}

// Styles returns the enabled styles.
func (s *Synthesizer) Styles() []Style {
	return slices.Clone(s.styles)
}

// GenerateStyledBrief builds the brief for style from data. The result's
// Style always equals style. Nil data fails with an invalid input error and
// an unknown or disabled style with an unsupported style error.
func (s *Synthesizer) GenerateStyledBrief(ctx context.Context, data *unified.UnifiedData, style Style) (*BriefingData, error) {
	if data == nil {
		return nil, brieferrors.NewInvalidInputError("data", "unified data is required")
	}
	if !style.Valid() || !slices.Contains(s.styles, style) {
		return nil, brieferrors.NewUnsupportedStyleError(string(style), StyleNames(s.styles))
	}

	if s.memo == nil {
		return s.synthesize(ctx, data, style)
	}

	key, err := cache.Key("brief:"+string(style), data)
	if err != nil {
		return nil, brieferrors.Wrap(err, "failed to build brief cache key")
	}

	b, cached, err := s.memo.Do(ctx, key, s.ttl, func(ctx context.Context) (*BriefingData, error) {
		return s.synthesize(ctx, data, style)
	})
	if err != nil {
		return nil, err
	}
	// A failed tone pass is worth retrying on the next call.
	if b.Polish != nil && !b.Polish.Applied {
		s.memo.Store().Delete(key)
	}
	s.logDebug("brief served", "style", style, "id", b.ID, "cached", cached)

	return clone(b)
}

func (s *Synthesizer) synthesize(ctx context.Context, data *unified.UnifiedData, style Style) (*BriefingData, error) {
	ci, err := s.extractor.ExtractFrom(ctx, data)
	if err != nil {
		return nil, brieferrors.Wrap(err, "failed to extract insights")
	}

	now := s.clock.Now().UTC()
	out := &BriefingData{
		ID:          uuid.NewString(),
		Style:       style,
		GeneratedAt: now,
		Degraded:    ci.Sentiment != nil && ci.Sentiment.Degraded,
	}

	presenters[style](newProjection(now, data, ci), out)
	applyPolish(ctx, s.polisher, out)

	if out.Polish != nil && out.Polish.Error != "" {
		s.logDebug("tone pass failed, keeping original text", "tone", out.Polish.Tone, "error", out.Polish.Error)
	}
	s.logDebug("brief synthesized", "style", style, "id", out.ID,
		"emails", ci.TotalEmails, "actions", len(ci.ImmediateActions), "skipped", ci.Skipped)

	return out, nil
}

// clone deep-copies b so callers never share memory with the cache.
func clone(b *BriefingData) (*BriefingData, error) {
	encoded, err := json.Marshal(b)
	if err != nil {
		return nil, brieferrors.Wrap(err, "failed to copy brief")
	}
	var out BriefingData
	if err := json.Unmarshal(encoded, &out); err != nil {
		return nil, brieferrors.Wrap(err, "failed to copy brief")
	}
	return &out, nil
}

func (s *Synthesizer) logDebug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
