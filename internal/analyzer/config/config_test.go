package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 270*time.Second, cfg.Analyzer.CacheTTL)
	assert.Equal(t, 4, cfg.Analyzer.Workers)
	assert.Equal(t, 0.4, cfg.Analyzer.AmbiguousLow)
	assert.Equal(t, 0.6, cfg.Analyzer.AmbiguousHigh)
	assert.Equal(t, 512, cfg.Analyzer.MaxClassifierText)
	assert.Contains(t, cfg.Analyzer.DenylistTerms, "rug pull")
	assert.Equal(t, 200, cfg.Twitter.MaxResults)
	assert.Equal(t, 100, cfg.Farcaster.MaxResults)
	assert.Equal(t, "gemini", cfg.AI.Provider)
	assert.Equal(t, []string{"negative", "positive"}, cfg.HuggingFace.Labels)
	assert.Equal(t, "file", cfg.Cache.Driver)
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
analyzer:
  workers: 8
  cache_ttl: 1m
cache:
  driver: redis
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	t.Setenv("TWITTER_BEARER_TOKEN", "token-from-env")
	t.Setenv("AI_PROVIDER", "openai")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Analyzer.Workers)
	assert.Equal(t, time.Minute, cfg.Analyzer.CacheTTL)
	assert.Equal(t, "redis", cfg.Cache.Driver)
	assert.Equal(t, "token-from-env", cfg.Twitter.BearerToken)
	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.Equal(t, 0.4, cfg.Analyzer.AmbiguousLow)
}

func TestLoad_MissingFileFallsBack(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Analyzer.Workers)
}
