package entity

import (
	"time"

	"golang-stock-sentiment/pkg/utils"
)

// SentimentCache is the persisted aggregate sentiment of a ticker.
type SentimentCache struct {
	Ticker     string  `json:"ticker"`
	Score      float64 `json:"score"`
	Timestamp  string  `json:"timestamp"`
	SampleSize int     `json:"sample_size"`
}

// IsFresh reports whether the entry was computed less than ttl before now.
// An entry with an unparsable timestamp is never fresh.
func (c SentimentCache) IsFresh(now time.Time, ttl time.Duration) bool {
	computedAt, err := utils.ParseTimestamp(c.Timestamp)
	if err != nil {
		return false
	}
	return now.Sub(computedAt) < ttl
}
