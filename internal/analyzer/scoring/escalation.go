package scoring

import (
	"context"
	"fmt"
	"math"

	"golang-stock-sentiment/internal/analyzer/dto"
	"golang-stock-sentiment/internal/analyzer/repository"
)

// escalator consults the heavy classifier for scores inside the ambiguous band.
type escalator struct {
	classifier repository.ClassifierRepository
	low, high  float64
	maxRunes   int
}

// InBand reports whether base lies in the inclusive ambiguous band.
func (e escalator) InBand(base float64) bool {
	return base >= e.low && base <= e.high
}

// Escalate returns base unchanged outside the band or when no classifier is configured.
// Inside the band the classifier verdict is reconciled with base.
func (e escalator) Escalate(ctx context.Context, text string, base float64) Result {
	if !e.InBand(base) || e.classifier == nil {
		return Success(base)
	}

	verdict, err := e.classifier.Classify(ctx, Truncate(text, e.maxRunes))
	if err != nil {
		return Failure(fmt.Errorf("classifier failed: %w", err))
	}
	return Success(Reconcile(base, *verdict))
}

// Reconcile moves base toward the classifier's direction only:
// positive -> max(base, confidence), negative -> min(base, 1 - confidence).
func Reconcile(base float64, verdict dto.Classification) float64 {
	if verdict.Label == dto.LabelPositive {
		return clamp01(math.Max(base, verdict.Confidence))
	}
	return clamp01(math.Min(base, 1-verdict.Confidence))
}

// Truncate keeps at most n runes of text. n <= 0 disables truncation.
func Truncate(text string, n int) string {
	if n <= 0 {
		return text
	}
	count := 0
	for i := range text {
		if count == n {
			return text[:i]
		}
		count++
	}
	return text
}
