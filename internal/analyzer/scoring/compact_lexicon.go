package scoring

// compactLexicon is a small market flavoured word list. A negator flips the next scored word.
type compactLexicon struct {
	words    map[string]float64
	negators map[string]struct{}
}

func newCompactLexicon() compactLexicon {
	return compactLexicon{
		words: map[string]float64{
			"good": 0.5, "great": 0.7, "awesome": 0.8, "love": 0.7, "like": 0.3, "nice": 0.4,
			"bullish": 0.8, "moon": 0.6, "pump": 0.3, "buy": 0.4, "long": 0.3, "gain": 0.5,
			"gains": 0.5, "profit": 0.5, "win": 0.5, "strong": 0.4, "up": 0.2, "rally": 0.6,
			"beat": 0.4, "breakout": 0.5, "undervalued": 0.4, "hodl": 0.3, "wagmi": 0.5,
			"bad": -0.5, "terrible": -0.8, "awful": -0.8, "hate": -0.7, "worst": -0.8,
			"bearish": -0.8, "dump": -0.6, "sell": -0.4, "short": -0.3, "loss": -0.5,
			"losses": -0.5, "crash": -0.8, "weak": -0.4, "down": -0.2, "drop": -0.4,
			"miss": -0.4, "overvalued": -0.4, "rekt": -0.7, "ngmi": -0.5, "bagholder": -0.5,
			"fraud": -0.8, "scam": -0.9,
		},
		negators: map[string]struct{}{
			"not": {}, "no": {}, "never": {}, "don't": {}, "isn't": {}, "wasn't": {}, "aint": {}, "ain't": {},
		},
	}
}

// Polarity is the mean polarity of the scored words in text, in [-1,1]. Text without
// any known word is neutral.
func (l compactLexicon) Polarity(text string) float64 {
	var (
		sum     float64
		matched int
		negate  bool
	)
	for _, token := range tokenize(text) {
		if _, ok := l.negators[token]; ok {
			negate = true
			continue
		}
		p, ok := l.words[token]
		if !ok {
			continue
		}
		if negate {
			p = -p
			negate = false
		}
		sum += p
		matched++
	}
	if matched == 0 {
		return 0
	}
	polarity := sum / float64(matched)
	if polarity > 1 {
		return 1
	}
	if polarity < -1 {
		return -1
	}
	return polarity
}
