package scoring

// Method names the scoring path that produced a post score.
type Method string

const (
	MethodHeuristic Method = "heuristic"
	MethodBase      Method = "base"
	MethodEscalated Method = "escalated"
	MethodFallback  Method = "fallback"
)

// NeutralScore is the score of a post or ticker without any usable signal.
const NeutralScore = 0.5

// Result is either a score or the reason no score could be produced.
type Result struct {
	Score float64
	Err   error
}

func Success(score float64) Result {
	return Result{Score: score}
}

func Failure(err error) Result {
	return Result{Score: NeutralScore, Err: err}
}

// OK reports whether the result carries a score.
func (r Result) OK() bool {
	return r.Err == nil
}

// ScoredPost pairs a post text with its score and the path that produced it.
type ScoredPost struct {
	Text   string
	Score  float64
	Method Method
	// Err is the model failure that sent the post down the fallback path.
	Err error
}

// rescale maps a polarity in [-1,1] onto [0,1].
func rescale(polarity float64) float64 {
	return clamp01((polarity + 1) / 2)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
