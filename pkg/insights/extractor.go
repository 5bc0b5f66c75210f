package insights

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	brieferrors "github.com/ask-andrew/360brief-sub007/pkg/errors"
	"github.com/ask-andrew/360brief-sub007/pkg/sentiment"
	"github.com/ask-andrew/360brief-sub007/pkg/unified"
)

// Extraction defaults.
const (
	DefaultTopN        = 5
	DefaultConcurrency = 4
)

// Options configures an Extractor.
type Options struct {
	TopN        int                // Maximum key topics; defaults to DefaultTopN
	Concurrency int                // Parallel sentiment calls; defaults to DefaultConcurrency
	Analyzer    sentiment.Analyzer // Optional; nil leaves Sentiment unset
	Logger      *slog.Logger
}

// Extractor computes CommunicationInsights. It holds no per-call state and
// is safe for concurrent use.
type Extractor struct {
	topN        int
	concurrency int
	analyzer    sentiment.Analyzer
	logger      *slog.Logger
}

// NewExtractor creates an Extractor from opts.
func NewExtractor(opts Options) *Extractor {
	e := &Extractor{
		topN:        opts.TopN,
		concurrency: opts.Concurrency,
		analyzer:    opts.Analyzer,
		logger:      opts.Logger,
	}
	if e.topN < 1 {
		e.topN = DefaultTopN
	}
	if e.concurrency < 1 {
		e.concurrency = DefaultConcurrency
	}
	return e
}

// Extract derives insights from emails alone. A nil slice is an empty batch.
func (e *Extractor) Extract(ctx context.Context, emails []unified.EmailItem) (*CommunicationInsights, error) {
	return e.extract(ctx, emails, nil, nil)
}

// ExtractFrom derives insights from a whole batch, including tickets and
// incidents in action detection. A nil batch is invalid input.
func (e *Extractor) ExtractFrom(ctx context.Context, data *unified.UnifiedData) (*CommunicationInsights, error) {
	if data == nil {
		return nil, brieferrors.NewInvalidInputError("data", "unified data is required")
	}
	return e.extract(ctx, data.Emails, data.Tickets, data.Incidents)
}

func (e *Extractor) extract(ctx context.Context, emails []unified.EmailItem, tickets []unified.TicketItem, incidents []unified.IncidentItem) (*CommunicationInsights, error) {
	var skipped *multierror.Error
	skip := func(kind string, index int, err error) {
		skipped = multierror.Append(skipped, errors.Wrapf(err, "%s[%d]", kind, index))
	}

	valid := make([]unified.EmailItem, 0, len(emails))
	for i, em := range emails {
		if err := em.Validate(); err != nil {
			skip("emails", i, err)
			continue
		}
		valid = append(valid, em)
	}

	dates := make([]time.Time, len(valid))
	topics := newTopicCounter()
	var actions []Action

	for i, em := range valid {
		dates[i] = em.Date
		topics.add(em.Subject)
		topics.add(em.Body)
		if a, ok := emailAction(em); ok {
			actions = append(actions, a)
		}
	}

	for i, t := range tickets {
		if err := t.Validate(); err != nil {
			skip("tickets", i, err)
			continue
		}
		if a, ok := ticketAction(t); ok {
			actions = append(actions, a)
		}
	}

	for i, inc := range incidents {
		if err := inc.Validate(); err != nil {
			skip("incidents", i, err)
			continue
		}
		if a, ok := incidentAction(inc); ok {
			actions = append(actions, a)
		}
	}

	sortActions(actions)
	if actions == nil {
		actions = []Action{}
	}

	out := &CommunicationInsights{
		TotalEmails:      len(valid),
		VolumeTrend:      volumeTrend(dates),
		KeyTopics:        topics.top(e.topN),
		ImmediateActions: actions,
	}

	if skipped != nil {
		out.Skipped = len(skipped.Errors)
		e.logDebug("skipped malformed items", "count", out.Skipped, "errors", skipped.Error())
	}

	if e.analyzer != nil {
		summary, err := e.summarizeSentiment(ctx, valid)
		if err != nil {
			return nil, err
		}
		out.Sentiment = summary
	}

	return out, nil
}

// summarizeSentiment analyzes every email concurrently and aggregates the
// results in input order. Individual failures count as Failed; only
// cancellation aborts the summary.
func (e *Extractor) summarizeSentiment(ctx context.Context, emails []unified.EmailItem) (*SentimentSummary, error) {
	results := make([]*sentiment.Result, len(emails))
	failed := make([]bool, len(emails))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i, em := range emails {
		text := emailText(em)
		if strings.TrimSpace(text) == "" {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := e.analyzer.Analyze(gctx, text)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				e.logDebug("sentiment failed", "email", em.ID, "error", err)
				failed[i] = true
				return nil
			}
			results[i] = &res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "sentiment analysis interrupted")
	}

	summary := &SentimentSummary{}
	var total float64
	for i, res := range results {
		if res == nil {
			if failed[i] {
				summary.Failed++
			}
			continue
		}
		switch res.Sentiment {
		case sentiment.Positive:
			summary.Positive++
		case sentiment.Negative:
			summary.Negative++
		default:
			summary.Neutral++
		}
		if res.Method == sentiment.MethodAI {
			summary.AICount++
		} else {
			summary.FallbackCount++
		}
		total += res.Score
	}

	if n := summary.Analyzed(); n > 0 {
		summary.AverageScore = total / float64(n)
	}
	summary.Degraded = summary.FallbackCount > 0 || summary.Failed > 0

	return summary, nil
}

func emailText(e unified.EmailItem) string {
	if e.Body == "" {
		return e.Subject
	}
	if e.Subject == "" {
		return e.Body
	}
	return e.Subject + "\n\n" + e.Body
}

func (e *Extractor) logDebug(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}
