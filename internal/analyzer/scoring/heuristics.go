package scoring

import "strings"

const (
	ManipulationScore = 0.2
	SarcasmScore      = 0.3
	rocketEmoji       = "🚀"
)

type rule struct {
	score float64
	match func(lower string) bool
}

// Heuristics overrides model scoring for known manipulative or sarcastic patterns.
// Rules are evaluated in order and the first match wins.
type Heuristics struct {
	rules []rule
}

func NewHeuristics(denylist []string) *Heuristics {
	terms := make([]string, 0, len(denylist))
	for _, term := range denylist {
		if term = strings.ToLower(strings.TrimSpace(term)); term != "" {
			terms = append(terms, term)
		}
	}

	return &Heuristics{rules: []rule{
		{
			score: ManipulationScore,
			match: func(lower string) bool {
				for _, term := range terms {
					if strings.Contains(lower, term) {
						return true
					}
				}
				return false
			},
		},
		{
			score: SarcasmScore,
			match: func(lower string) bool {
				return strings.Contains(lower, rocketEmoji) && strings.Contains(lower, "dump")
			},
		},
	}}
}

// Override returns the fixed score of the first matching rule.
func (h *Heuristics) Override(text string) (float64, bool) {
	lower := strings.ToLower(text)
	for _, r := range h.rules {
		if r.match(lower) {
			return r.score, true
		}
	}
	return 0, false
}
