package bootstrap

import (
	"context"
	"log/slog"

	"github.com/ask-andrew/360brief-sub007/pkg/ai"
	"github.com/ask-andrew/360brief-sub007/pkg/brief"
	"github.com/ask-andrew/360brief-sub007/pkg/cache"
	"github.com/ask-andrew/360brief-sub007/pkg/config"
	"github.com/ask-andrew/360brief-sub007/pkg/insights"
	"github.com/ask-andrew/360brief-sub007/pkg/sentiment"
)

// PipelineOptions adjusts how BuildPipeline reads the config.
type PipelineOptions struct {
	FallbackOnly bool   // Skip the AI provider even when enabled
	Tone         string // Overrides brief.tone when set
}

// Pipeline holds the wired components for one process.
type Pipeline struct {
	Provider    ai.Provider // Nil when AI is disabled or unavailable
	Analyzer    sentiment.Analyzer
	Extractor   *insights.Extractor
	Synthesizer *brief.Synthesizer
}

// BuildPipeline wires sentiment, insights and synthesis from cfg. Cache
// sweepers stop when ctx is done.
func BuildPipeline(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts PipelineOptions) (*Pipeline, error) {
	retry := cfg.Retry.Policy()

	var provider ai.Provider
	if cfg.AI.Enabled && !opts.FallbackOnly {
		p, err := ai.NewProvider(&cfg.AI, logger)
		if err != nil {
			return nil, err
		}
		if p.IsAvailable() {
			provider = p
		} else if logger != nil {
			logger.Warn("AI provider is not configured, using fallback sentiment", "provider", p.Name())
		}
	}

	var primary sentiment.Analyzer
	if provider != nil {
		primary = sentiment.NewAIStrategy(provider, logger)
	}

	sentimentStore := cache.NewMemory[sentiment.Result](nil)
	sentimentStore.StartSweeper(ctx, cfg.Cache.SweepInterval)
	analyzer := sentiment.NewCached(
		sentiment.NewResilient(primary, nil, retry, logger),
		sentimentStore,
		cfg.Cache.SentimentTTL,
	)

	extractor := insights.NewExtractor(insights.Options{
		TopN:        cfg.Insights.TopN,
		Concurrency: cfg.Insights.Concurrency,
		Analyzer:    analyzer,
		Logger:      logger,
	})

	tone := cfg.Brief.Tone
	if opts.Tone != "" {
		tone = opts.Tone
	}
	polisher, err := brief.NewPolisher(tone, provider, retry, logger)
	if err != nil {
		return nil, err
	}

	styles, err := brief.ParseStyles(cfg.Brief.Styles)
	if err != nil {
		return nil, err
	}

	briefStore := cache.NewMemory[*brief.BriefingData](nil)
	briefStore.StartSweeper(ctx, cfg.Cache.SweepInterval)

	return &Pipeline{
		Provider:  provider,
		Analyzer:  analyzer,
		Extractor: extractor,
		Synthesizer: brief.NewSynthesizer(brief.Options{
			Styles:    styles,
			Extractor: extractor,
			Polisher:  polisher,
			Cache:     briefStore,
			CacheTTL:  cfg.Cache.BriefTTL,
			Logger:    logger,
		}),
	}, nil
}
