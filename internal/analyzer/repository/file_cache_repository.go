package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang-stock-sentiment/internal/entity"
)

type fileCacheRepository struct {
	path string
	mu   sync.Mutex
}

// NewFileCacheRepository stores all tickers in one indented JSON document at path.
// Writes are read-modify-write followed by a rename, so concurrent processes race
// with last-writer-wins semantics.
func NewFileCacheRepository(path string) SentimentCacheRepository {
	return &fileCacheRepository{path: path}
}

func (r *fileCacheRepository) Get(ctx context.Context, ticker string) (*entity.SentimentCache, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.readAll()
	if err != nil {
		return nil, err
	}
	entry, ok := records[ticker]
	if !ok {
		return nil, ErrCacheMiss
	}
	entry.Ticker = ticker
	return &entry, nil
}

func (r *fileCacheRepository) Save(ctx context.Context, entry entity.SentimentCache) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.readAll()
	if err != nil {
		// A corrupt file is replaced rather than blocking every future write.
		records = map[string]entity.SentimentCache{}
	}
	records[entry.Ticker] = entry

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal sentiment cache: %w", err)
	}

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp cache file: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("failed to replace cache file: %w", err)
	}
	return nil
}

func (r *fileCacheRepository) readAll() (map[string]entity.SentimentCache, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]entity.SentimentCache{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	records := map[string]entity.SentimentCache{}
	if len(data) == 0 {
		return records, nil
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode cache file: %w", err)
	}
	return records, nil
}
