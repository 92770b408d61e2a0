package scoring

import (
	"fmt"
	"strings"
	"unicode"

	"golang-stock-sentiment/pkg/utils"
)

// baseScorer counts positive and negative tokens and rescales their balance to [0,1].
type baseScorer struct {
	model PolarityModel
}

// Score returns (pos - neg) / tokens rescaled to [0,1]. A document without tokens is neutral.
// A failure inside the model is reported as a failed Result.
func (s baseScorer) Score(text string) Result {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return Success(NeutralScore)
	}

	var positive, negative int
	err := utils.Recover(func() error {
		for _, token := range tokens {
			switch p := s.model.TokenPolarity(token); {
			case p > 0:
				positive++
			case p < 0:
				negative++
			}
		}
		return nil
	})
	if err != nil {
		return Failure(fmt.Errorf("token polarity model failed: %w", err))
	}

	return Success(rescale(float64(positive-negative) / float64(len(tokens))))
}

// Fallback is the document level lexical polarity rescaled to [0,1]. It never fails;
// a failing model yields the neutral score.
func (s baseScorer) Fallback(text string) float64 {
	score := NeutralScore
	_ = utils.Recover(func() error {
		score = rescale(s.model.DocumentPolarity(text))
		return nil
	})
	return score
}

func tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	tokens := fields[:0]
	for _, f := range fields {
		if t := strings.TrimFunc(f, unicode.IsPunct); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}
