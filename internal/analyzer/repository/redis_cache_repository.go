package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang-stock-sentiment/internal/entity"
	"golang-stock-sentiment/pkg/common"

	"github.com/redis/go-redis/v9"
)

type redisCacheRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCacheRepository stores one JSON record per ticker. Keys expire after ttl,
// freshness is still decided by the record timestamp.
func NewRedisCacheRepository(client *redis.Client, ttl time.Duration) SentimentCacheRepository {
	return &redisCacheRepository{client: client, ttl: ttl}
}

func (r *redisCacheRepository) Get(ctx context.Context, ticker string) (*entity.SentimentCache, error) {
	raw, err := r.client.Get(ctx, fmt.Sprintf(common.RedisKeySentimentCache, ticker)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sentiment cache: %w", err)
	}

	var entry entity.SentimentCache
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil, fmt.Errorf("failed to decode sentiment cache: %w", err)
	}
	return &entry, nil
}

func (r *redisCacheRepository) Save(ctx context.Context, entry entity.SentimentCache) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal sentiment cache: %w", err)
	}
	if err := r.client.Set(ctx, fmt.Sprintf(common.RedisKeySentimentCache, entry.Ticker), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set sentiment cache: %w", err)
	}
	return nil
}
