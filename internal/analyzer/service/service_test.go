package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"golang-stock-sentiment/internal/analyzer/config"
	"golang-stock-sentiment/internal/analyzer/dto"
	"golang-stock-sentiment/internal/analyzer/repository"
	"golang-stock-sentiment/internal/analyzer/scoring"
	"golang-stock-sentiment/internal/entity"
	"golang-stock-sentiment/pkg/logger"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	name  string
	posts []string
	err   error
	delay time.Duration

	mu      sync.Mutex
	calls   int
	tickers []string
	caps    []int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) SearchPosts(ctx context.Context, ticker string, maxResults int) ([]string, error) {
	f.mu.Lock()
	f.calls++
	f.tickers = append(f.tickers, ticker)
	f.caps = append(f.caps, maxResults)
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.posts, nil
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type lexiconModel map[string]float64

func (m lexiconModel) TokenPolarity(token string) float64 { return m[token] }

func (m lexiconModel) DocumentPolarity(text string) float64 { return 0 }

type fixedClassifier struct {
	verdict dto.Classification
	mu      sync.Mutex
	calls   int
}

func (c *fixedClassifier) Classify(ctx context.Context, text string) (*dto.Classification, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	v := c.verdict
	return &v, nil
}

type failingCache struct{}

func (failingCache) Get(ctx context.Context, ticker string) (*entity.SentimentCache, error) {
	return nil, errors.New("disk on fire")
}

func (failingCache) Save(ctx context.Context, entry entity.SentimentCache) error {
	return errors.New("disk on fire")
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	return cfg
}

type advancingClock interface {
	clockwork.Clock
	Advance(d time.Duration)
}

type fixture struct {
	svc       SentimentService
	clock     advancingClock
	cache     repository.SentimentCacheRepository
	twitter   *fakeSource
	farcaster *fakeSource
}

func newFixture(t *testing.T, twitterPosts, farcasterPosts []string, classifier repository.ClassifierRepository) *fixture {
	t.Helper()
	cfg := testConfig(t)
	log := logger.NewNop()

	f := &fixture{
		clock:     clockwork.NewFakeClockAt(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)),
		cache:     repository.NewMemoryCacheRepository(time.Hour),
		twitter:   &fakeSource{name: "twitter", posts: twitterPosts},
		farcaster: &fakeSource{name: "farcaster", posts: farcasterPosts},
	}

	fetcher := NewPostFetcherService(log, time.Second,
		PostSource{Repository: f.twitter, MaxResults: cfg.Twitter.MaxResults},
		PostSource{Repository: f.farcaster, MaxResults: cfg.Farcaster.MaxResults},
	)
	scorer := scoring.NewContext(lexiconModel{"good": 0.4, "great": 0.6, "bad": -0.5}, classifier, scoring.Options{
		DenylistTerms:     cfg.Analyzer.DenylistTerms,
		AmbiguousLow:      cfg.Analyzer.AmbiguousLow,
		AmbiguousHigh:     cfg.Analyzer.AmbiguousHigh,
		MaxClassifierText: cfg.Analyzer.MaxClassifierText,
	})
	f.svc = NewSentimentService(cfg, log, f.clock, f.cache, fetcher, scorer)
	return f
}

func TestAnalyze_NoPostsIsNeutral(t *testing.T) {
	f := newFixture(t, nil, nil, nil)

	result, err := f.svc.Analyze(context.Background(), "ABC", dto.AnalyzeOptions{})

	require.NoError(t, err)
	assert.Equal(t, 0.5, result.Score)
	assert.Equal(t, 0, result.SampleSize)
	assert.False(t, result.Cached)
}

func TestAnalyze_HeuristicOverrideInAggregate(t *testing.T) {
	f := newFixture(t, []string{"good news $ABC"}, []string{"rug pull scam"}, nil)

	result, err := f.svc.Analyze(context.Background(), "abc", dto.AnalyzeOptions{})

	require.NoError(t, err)
	// "good news $abc": one positive token out of three -> (1/3 + 1) / 2.
	firstPost := (1.0/3.0 + 1) / 2
	assert.InDelta(t, (firstPost+0.2)/2, result.Score, 1e-12)
	assert.Equal(t, 2, result.SampleSize)
	assert.Equal(t, map[string]int{"base": 1, "heuristic": 1}, result.Methods)
}

func TestAnalyze_EscalatesAmbiguousPosts(t *testing.T) {
	classifier := &fixedClassifier{verdict: dto.Classification{Label: dto.LabelPositive, Confidence: 0.7}}
	f := newFixture(t, []string{"good bad", "great great"}, nil, classifier)

	result, err := f.svc.Analyze(context.Background(), "abc", dto.AnalyzeOptions{})

	require.NoError(t, err)
	assert.InDelta(t, (0.7+1.0)/2, result.Score, 1e-12)
	assert.Equal(t, 1, classifier.calls)
	assert.Equal(t, map[string]int{"base": 1, "escalated": 1}, result.Methods)
}

func TestAnalyze_CacheHitWithinTTL(t *testing.T) {
	f := newFixture(t, []string{"great"}, []string{"bad"}, nil)
	ctx := context.Background()

	first, err := f.svc.Analyze(ctx, "ABC", dto.AnalyzeOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, f.twitter.callCount())

	f.twitter.posts = []string{"bad bad bad"}
	f.clock.Advance(4 * time.Minute)

	second, err := f.svc.Analyze(ctx, "abc", dto.AnalyzeOptions{})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Score, second.Score)
	assert.Equal(t, 2, second.SampleSize)
	assert.Equal(t, 1, f.twitter.callCount())
	assert.Equal(t, 1, f.farcaster.callCount())
}

func TestAnalyze_RecomputesAfterTTL(t *testing.T) {
	f := newFixture(t, []string{"great"}, nil, nil)
	ctx := context.Background()

	first, err := f.svc.Analyze(ctx, "abc", dto.AnalyzeOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1.0, first.Score)

	f.twitter.posts = []string{"bad"}
	f.clock.Advance(270 * time.Second)

	second, err := f.svc.Analyze(ctx, "abc", dto.AnalyzeOptions{})
	require.NoError(t, err)
	assert.False(t, second.Cached)
	assert.Equal(t, 0.0, second.Score)
	assert.Equal(t, 2, f.twitter.callCount())

	stored, err := f.cache.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, 0.0, stored.Score)
	assert.Equal(t, "2024-03-01T09:04:30Z", stored.Timestamp)
}

func TestAnalyze_SkipCache(t *testing.T) {
	f := newFixture(t, []string{"great"}, nil, nil)
	ctx := context.Background()

	_, err := f.svc.Analyze(ctx, "abc", dto.AnalyzeOptions{})
	require.NoError(t, err)
	result, err := f.svc.Analyze(ctx, "abc", dto.AnalyzeOptions{SkipCache: true})
	require.NoError(t, err)

	assert.False(t, result.Cached)
	assert.Equal(t, 2, f.twitter.callCount())
}

func TestAnalyze_TickerIsCaseInsensitive(t *testing.T) {
	f := newFixture(t, []string{"great"}, nil, nil)
	ctx := context.Background()

	_, err := f.svc.Analyze(ctx, "$AbC", dto.AnalyzeOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"abc"}, f.twitter.tickers)

	stored, err := f.cache.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", stored.Ticker)
}

func TestAnalyze_InvalidTicker(t *testing.T) {
	f := newFixture(t, nil, nil, nil)

	_, err := f.svc.Analyze(context.Background(), "  $ ", dto.AnalyzeOptions{})
	assert.ErrorIs(t, err, ErrInvalidTicker)
}

func TestAnalyze_OneSourceFailingDegrades(t *testing.T) {
	f := newFixture(t, []string{"great"}, nil, nil)
	f.farcaster.err = errors.New("401 unauthorized")

	result, err := f.svc.Analyze(context.Background(), "abc", dto.AnalyzeOptions{})

	require.NoError(t, err)
	assert.Equal(t, 1.0, result.Score)
	assert.Equal(t, 1, result.SampleSize)
}

func TestAnalyze_AllSourcesFailingAborts(t *testing.T) {
	f := newFixture(t, nil, nil, nil)
	f.twitter.err = errors.New("429")
	f.farcaster.err = errors.New("401")

	_, err := f.svc.Analyze(context.Background(), "abc", dto.AnalyzeOptions{})

	require.Error(t, err)
	assert.ErrorContains(t, err, "429")
	assert.ErrorContains(t, err, "401")
	_, cacheErr := f.cache.Get(context.Background(), "abc")
	assert.ErrorIs(t, cacheErr, repository.ErrCacheMiss)
}

func TestAnalyze_CacheErrorsAreNotSurfaced(t *testing.T) {
	cfg := testConfig(t)
	log := logger.NewNop()
	source := &fakeSource{name: "twitter", posts: []string{"great"}}
	fetcher := NewPostFetcherService(log, time.Second, PostSource{Repository: source, MaxResults: 10})
	scorer := scoring.NewContext(lexiconModel{"great": 1}, nil, scoring.Options{AmbiguousLow: 0.4, AmbiguousHigh: 0.6})
	svc := NewSentimentService(cfg, log, clockwork.NewFakeClock(), failingCache{}, fetcher, scorer)

	result, err := svc.Analyze(context.Background(), "abc", dto.AnalyzeOptions{})

	require.NoError(t, err)
	assert.Equal(t, 1.0, result.Score)
}

func TestPostFetcher_OrderAndCaps(t *testing.T) {
	slowTwitter := &fakeSource{name: "twitter", posts: []string{"t1", "t2"}, delay: 50 * time.Millisecond}
	farcaster := &fakeSource{name: "farcaster", posts: []string{"f1"}}
	fetcher := NewPostFetcherService(logger.NewNop(), time.Second,
		PostSource{Repository: slowTwitter, MaxResults: 200},
		PostSource{Repository: farcaster, MaxResults: 100},
	)

	posts, err := fetcher.FetchPosts(context.Background(), "abc")

	require.NoError(t, err)
	assert.Equal(t, []entity.Post{
		{Source: "twitter", Text: "t1"},
		{Source: "twitter", Text: "t2"},
		{Source: "farcaster", Text: "f1"},
	}, posts)
	assert.Equal(t, []int{200}, slowTwitter.caps)
	assert.Equal(t, []int{100}, farcaster.caps)
}

func TestPostFetcher_RunsSourcesConcurrently(t *testing.T) {
	a := &fakeSource{name: "a", posts: []string{"x"}, delay: 200 * time.Millisecond}
	b := &fakeSource{name: "b", posts: []string{"y"}, delay: 200 * time.Millisecond}
	fetcher := NewPostFetcherService(logger.NewNop(), time.Second, PostSource{Repository: a, MaxResults: 1}, PostSource{Repository: b, MaxResults: 1})

	start := time.Now()
	_, err := fetcher.FetchPosts(context.Background(), "abc")

	require.NoError(t, err)
	assert.Less(t, time.Since(start), 390*time.Millisecond)
}

func TestPostFetcher_DeadlineBoundsHangingSource(t *testing.T) {
	hanging := &fakeSource{name: "hanging", delay: time.Hour}
	fast := &fakeSource{name: "fast", posts: []string{"ok"}}
	fetcher := NewPostFetcherService(logger.NewNop(), 50*time.Millisecond, PostSource{Repository: hanging, MaxResults: 1}, PostSource{Repository: fast, MaxResults: 1})

	posts, err := fetcher.FetchPosts(context.Background(), "abc")

	require.NoError(t, err)
	assert.Equal(t, []entity.Post{{Source: "fast", Text: "ok"}}, posts)
}

func TestNormalizeTicker(t *testing.T) {
	assert.Equal(t, "abc", NormalizeTicker(" $ABC "))
	assert.Equal(t, "btc", NormalizeTicker("btc"))
}

func TestAnalyze_DenylistTermInsideBracketsFromSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := dto.FarcasterSearchResponse{}
		resp.Result.Casts = []dto.Cast{{Hash: "0x1", Text: "$ABC <rug pull incoming>"}}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	cfg := testConfig(t)
	cfg.Farcaster.BaseURL = srv.URL
	cfg.Farcaster.APIKey = "test-key"
	cfg.Farcaster.MaxRequestPerMinute = 0
	log := logger.NewNop()

	fetcher := NewPostFetcherService(log, time.Second,
		PostSource{Repository: repository.NewFarcasterRepository(cfg, log), MaxResults: 10},
	)
	scorer := scoring.NewContext(lexiconModel{}, nil, scoring.Options{
		DenylistTerms: cfg.Analyzer.DenylistTerms,
		AmbiguousLow:  cfg.Analyzer.AmbiguousLow,
		AmbiguousHigh: cfg.Analyzer.AmbiguousHigh,
	})
	svc := NewSentimentService(cfg, log, clockwork.NewFakeClock(), repository.NewMemoryCacheRepository(time.Hour), fetcher, scorer)

	result, err := svc.Analyze(context.Background(), "abc", dto.AnalyzeOptions{})

	require.NoError(t, err)
	assert.Equal(t, 1, result.SampleSize)
	assert.Equal(t, scoring.ManipulationScore, result.Score)
	assert.Equal(t, map[string]int{"heuristic": 1}, result.Methods)
}
