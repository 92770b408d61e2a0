package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang-stock-sentiment/internal/analyzer/dto"
	"golang-stock-sentiment/pkg/logger"

	"github.com/sony/gobreaker"
)

// ErrInvalidClassification is returned when a classifier answers with something other than
// a positive/negative label and a confidence in [0,1].
var ErrInvalidClassification = errors.New("invalid classification")

// ClassifierRepository is the heavy sentiment classifier consulted for ambiguous posts.
type ClassifierRepository interface {
	Classify(ctx context.Context, text string) (*dto.Classification, error)
}

// BuildClassifyPrompt asks an LLM for a binary sentiment verdict on a single post.
func BuildClassifyPrompt(text string) string {
	return fmt.Sprintf(`You are a financial sentiment classifier for social media posts about stocks and crypto assets.
Classify the crowd sentiment of the post below toward the asset it mentions.

Rules:
- "label" must be exactly "positive" or "negative". Pick the closer one when the post is neutral.
- "confidence" is a number between 0.0 (pure guess) and 1.0 (certain).
- Sarcasm counts as the sentiment the author actually means.

Post:
"""
%s
"""

Answer only with JSON in this format:
{"label": "positive", "confidence": 0.82}`, text)
}

// parseClassificationJSON decodes a JSON verdict, tolerating markdown code fences around it.
func parseClassificationJSON(raw string) (*dto.Classification, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var result dto.Classification
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal classification: %v", ErrInvalidClassification, err)
	}
	return normalizeClassification(result.Label, result.Confidence)
}

// normalizeClassification maps provider labels onto positive/negative and validates the confidence.
func normalizeClassification(label string, confidence float64) (*dto.Classification, error) {
	var normalized string
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "positive", "pos", "bullish":
		normalized = dto.LabelPositive
	case "negative", "neg", "bearish":
		normalized = dto.LabelNegative
	default:
		return nil, fmt.Errorf("%w: unknown label %q", ErrInvalidClassification, label)
	}

	if confidence < 0 || confidence > 1 {
		return nil, fmt.Errorf("%w: confidence %v out of range", ErrInvalidClassification, confidence)
	}

	return &dto.Classification{Label: normalized, Confidence: confidence}, nil
}

// breakerClassifierRepository stops calling a failing classifier once the circuit opens.
type breakerClassifierRepository struct {
	next    ClassifierRepository
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerClassifierRepository wraps next with a circuit breaker that opens after
// maxFailures consecutive failures and half-opens again after timeout.
func NewBreakerClassifierRepository(next ClassifierRepository, name string, maxFailures int, timeout time.Duration, log *logger.Logger) ClassifierRepository {
	if maxFailures <= 0 {
		maxFailures = 1
	}
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(maxFailures)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("Classifier circuit breaker state changed",
				logger.StringField("classifier", name),
				logger.StringField("from", from.String()),
				logger.StringField("to", to.String()),
			)
		},
	}
	return &breakerClassifierRepository{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

func (r *breakerClassifierRepository) Classify(ctx context.Context, text string) (*dto.Classification, error) {
	result, err := r.breaker.Execute(func() (interface{}, error) {
		return r.next.Classify(ctx, text)
	})
	if err != nil {
		return nil, err
	}
	return result.(*dto.Classification), nil
}
