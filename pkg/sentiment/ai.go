package sentiment

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/ask-andrew/360brief-sub007/pkg/ai"
	brieferrors "github.com/ask-andrew/360brief-sub007/pkg/errors"
)

// SystemPrompt instructs the model to answer with a bare JSON object.
const SystemPrompt = `You classify the sentiment of workplace communication.

Respond with ONLY a JSON object of the form:
{"sentiment": "positive" | "neutral" | "negative", "score": <number from -1 to 1>}

Negative scores mean negative sentiment. Do not add commentary.`

// maxPromptRunes bounds the text sent upstream.
const maxPromptRunes = 4000

// AIStrategy analyzes text with a language model provider.
type AIStrategy struct {
	provider ai.Provider
	logger   *slog.Logger
}

// NewAIStrategy creates an AIStrategy. A nil logger disables logging.
func NewAIStrategy(provider ai.Provider, logger *slog.Logger) *AIStrategy {
	return &AIStrategy{provider: provider, logger: logger}
}

// Analyze sends text to the provider. Every failure other than empty input is
// returned as an *errors.UpstreamError.
func (s *AIStrategy) Analyze(ctx context.Context, text string) (Result, error) {
	if err := requireText(text); err != nil {
		return Result{}, err
	}

	if s.provider == nil || !s.provider.IsAvailable() {
		return Result{}, brieferrors.NewUpstreamError("none", "Analyze", "no AI provider available")
	}
	name := s.provider.Name()

	reply, err := ai.Ask(ctx, s.provider, SystemPrompt, truncateRunes(text, maxPromptRunes))
	if err != nil {
		return Result{}, brieferrors.NewUpstreamErrorWithCause(name, "Analyze", "sentiment request failed", err)
	}

	result, err := parseReply(reply)
	if err != nil {
		if s.logger != nil {
			s.logger.Debug("unusable sentiment reply", "provider", name, "reply", reply, "error", err)
		}
		return Result{}, brieferrors.NewUpstreamErrorWithCause(name, "Analyze", "malformed sentiment response", err)
	}

	return result, nil
}

// parseReply extracts and validates the JSON object in a model reply,
// repairing malformed JSON when possible.
func parseReply(reply string) (Result, error) {
	raw := extractJSONObject(reply)

	var parsed struct {
		Sentiment string   `json:"sentiment"`
		Score     *float64 `json:"score"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(raw)
		if repairErr != nil {
			return Result{}, brieferrors.Wrap(err, "parse sentiment JSON")
		}
		if err := json.Unmarshal([]byte(repaired), &parsed); err != nil {
			return Result{}, brieferrors.Wrap(err, "parse repaired sentiment JSON")
		}
	}

	if parsed.Score == nil {
		return Result{}, brieferrors.New("sentiment response has no score")
	}
	score := *parsed.Score
	if math.IsNaN(score) || score < -1 || score > 1 {
		return Result{}, brieferrors.Newf("sentiment score %v outside [-1, 1]", score)
	}

	label := Label(strings.ToLower(strings.TrimSpace(parsed.Sentiment)))
	if label == "" {
		label = LabelFor(score)
	}
	if !label.Valid() {
		return Result{}, brieferrors.Newf("unknown sentiment label %q", parsed.Sentiment)
	}

	return Result{Sentiment: label, Score: score, Method: MethodAI}, nil
}

// extractJSONObject returns the outermost {...} span of content, or content
// unchanged when there is none.
func extractJSONObject(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")

	if start != -1 && end != -1 && end > start {
		return content[start : end+1]
	}
	if start != -1 {
		// Truncated reply; let the repair pass close it.
		return content[start:]
	}
	return content
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
