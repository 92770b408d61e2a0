package scoring

// Aggregate is the arithmetic mean of scores, each clamped to [0,1].
// An empty input is neutral.
func Aggregate(scores []float64) float64 {
	if len(scores) == 0 {
		return NeutralScore
	}
	var sum float64
	for _, s := range scores {
		sum += clamp01(s)
	}
	return clamp01(sum / float64(len(scores)))
}
