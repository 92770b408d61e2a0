package scoring

import (
	"context"

	"golang-stock-sentiment/internal/analyzer/repository"
)

// Options configures a scoring Context.
type Options struct {
	DenylistTerms     []string
	AmbiguousLow      float64
	AmbiguousHigh     float64
	MaxClassifierText int
}

// Context owns the loaded models used to score posts. It is safe for concurrent use
// as long as the model and classifier are.
type Context struct {
	heuristics *Heuristics
	base       baseScorer
	escalator  escalator
}

// NewContext builds a scoring context. classifier may be nil, in which case ambiguous
// posts keep their base score.
func NewContext(model PolarityModel, classifier repository.ClassifierRepository, opts Options) *Context {
	return &Context{
		heuristics: NewHeuristics(opts.DenylistTerms),
		base:       baseScorer{model: model},
		escalator: escalator{
			classifier: classifier,
			low:        opts.AmbiguousLow,
			high:       opts.AmbiguousHigh,
			maxRunes:   opts.MaxClassifierText,
		},
	}
}

// Score runs a post through heuristic overrides, the base scorer and, for ambiguous
// base scores, the escalation classifier. Model failures fall back to lexical polarity.
func (c *Context) Score(ctx context.Context, text string) ScoredPost {
	if score, ok := c.heuristics.Override(text); ok {
		return ScoredPost{Text: text, Score: score, Method: MethodHeuristic}
	}

	base := c.base.Score(text)
	if !base.OK() {
		return ScoredPost{Text: text, Score: c.base.Fallback(text), Method: MethodFallback, Err: base.Err}
	}

	if !c.escalator.InBand(base.Score) || c.escalator.classifier == nil {
		return ScoredPost{Text: text, Score: base.Score, Method: MethodBase}
	}

	escalated := c.escalator.Escalate(ctx, text, base.Score)
	if !escalated.OK() {
		return ScoredPost{Text: text, Score: c.base.Fallback(text), Method: MethodFallback, Err: escalated.Err}
	}
	return ScoredPost{Text: text, Score: escalated.Score, Method: MethodEscalated}
}
