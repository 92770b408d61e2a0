package scoring

import (
	"github.com/jonreiter/govader"
)

// PolarityModel is the fast local lexicon model. Both methods return a polarity in [-1,1].
// DocumentPolarity backs the fallback path and should not share state with TokenPolarity.
type PolarityModel interface {
	TokenPolarity(token string) float64
	DocumentPolarity(text string) float64
}

type vaderModel struct {
	analyzer *govader.SentimentIntensityAnalyzer
	fallback compactLexicon
}

// NewVaderModel loads the VADER lexicon for token polarity. Document polarity uses the
// compact built-in lexicon, so a broken VADER lexicon does not take the fallback down too.
func NewVaderModel() PolarityModel {
	return &vaderModel{
		analyzer: govader.NewSentimentIntensityAnalyzer(),
		fallback: newCompactLexicon(),
	}
}

func (m *vaderModel) TokenPolarity(token string) float64 {
	return m.analyzer.PolarityScores(token).Compound
}

func (m *vaderModel) DocumentPolarity(text string) float64 {
	return m.fallback.Polarity(text)
}
