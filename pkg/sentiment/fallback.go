package sentiment

import (
	"context"
	"math"
	"regexp"
	"strings"
)

// normalizationAlpha controls how quickly the score saturates toward ±1.
const normalizationAlpha = 15.0

// negationWindow is how many following tokens a negator affects.
const negationWindow = 3

var wordPattern = regexp.MustCompile(`[a-z]+(?:'[a-z]+)?`)

var apostrophes = strings.NewReplacer("’", "'", "‘", "'")

// FallbackStrategy scores text against a built-in lexicon. It needs no
// network, is deterministic and succeeds for any non-empty text.
type FallbackStrategy struct{}

// NewFallbackStrategy returns the lexicon strategy.
func NewFallbackStrategy() *FallbackStrategy { return &FallbackStrategy{} }

// Analyze scores text. The context is not consulted; scoring is cheap and
// synchronous.
func (FallbackStrategy) Analyze(_ context.Context, text string) (Result, error) {
	if err := requireText(text); err != nil {
		return Result{}, err
	}

	score := Score(text)
	return Result{Sentiment: LabelFor(score), Score: score, Method: MethodFallback}, nil
}

// Score returns the lexicon score of text in [-1, 1].
//
// Each lexicon word contributes its valence, scaled by a directly preceding
// booster and flipped (at reduced strength) when a negator appears within
// the previous few tokens. Positive and negative mass are accumulated
// separately and combined as (pos-neg)/sqrt(pos²+neg²+alpha).
func Score(text string) float64 {
	tokens := wordPattern.FindAllString(apostrophes.Replace(strings.ToLower(text)), -1)

	var pos, neg float64
	negatedUntil := -1

	for i, tok := range tokens {
		if negators[tok] {
			negatedUntil = i + negationWindow
			continue
		}

		valence, ok := lexicon[tok]
		if !ok {
			continue
		}

		if i > 0 {
			if boost, ok := boosters[tokens[i-1]]; ok {
				valence *= boost
			}
		}
		if i <= negatedUntil {
			valence *= -0.74
		}

		if valence > 0 {
			pos += valence
		} else {
			neg -= valence
		}
	}

	if pos == 0 && neg == 0 {
		return 0
	}

	return clamp((pos-neg)/math.Sqrt(pos*pos+neg*neg+normalizationAlpha), -1, 1)
}
