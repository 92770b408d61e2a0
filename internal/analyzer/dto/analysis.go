package dto

import "time"

// AnalysisResult is the outcome of one sentiment run for a ticker.
type AnalysisResult struct {
	Ticker     string    `json:"ticker"`
	Score      float64   `json:"score"`
	SampleSize int       `json:"sample_size"`
	Cached     bool      `json:"cached"`
	ComputedAt time.Time `json:"computed_at"`
	// Methods counts how many posts were scored by each scoring path. Empty on cache hits.
	Methods map[string]int `json:"methods,omitempty"`
}

// AnalyzeOptions tweaks a single run.
type AnalyzeOptions struct {
	SkipCache bool
}
