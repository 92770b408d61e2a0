package repository

import (
	"context"
	"time"

	"golang-stock-sentiment/internal/entity"

	"github.com/patrickmn/go-cache"
)

type memoryCacheRepository struct {
	inmemoryCache *cache.Cache
}

// NewMemoryCacheRepository keeps records in process memory for ttl.
func NewMemoryCacheRepository(ttl time.Duration) SentimentCacheRepository {
	return &memoryCacheRepository{
		inmemoryCache: cache.New(ttl, 2*ttl),
	}
}

func (r *memoryCacheRepository) Get(ctx context.Context, ticker string) (*entity.SentimentCache, error) {
	value, ok := r.inmemoryCache.Get(ticker)
	if !ok {
		return nil, ErrCacheMiss
	}
	entry := value.(entity.SentimentCache)
	return &entry, nil
}

func (r *memoryCacheRepository) Save(ctx context.Context, entry entity.SentimentCache) error {
	r.inmemoryCache.SetDefault(entry.Ticker, entry)
	return nil
}
