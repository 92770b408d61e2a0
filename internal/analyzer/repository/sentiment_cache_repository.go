package repository

import (
	"context"
	"errors"

	"golang-stock-sentiment/internal/entity"
)

// ErrCacheMiss is returned when no record exists for a ticker.
var ErrCacheMiss = errors.New("sentiment cache miss")

// SentimentCacheRepository stores the last aggregate sentiment per ticker.
// Tickers are expected to be normalized by the caller.
type SentimentCacheRepository interface {
	Get(ctx context.Context, ticker string) (*entity.SentimentCache, error)
	Save(ctx context.Context, entry entity.SentimentCache) error
}
