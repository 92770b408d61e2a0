package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang-stock-sentiment/internal/analyzer/config"
	"golang-stock-sentiment/internal/analyzer/dto"
	"golang-stock-sentiment/internal/analyzer/repository"
	"golang-stock-sentiment/internal/analyzer/scoring"
	"golang-stock-sentiment/internal/entity"
	"golang-stock-sentiment/pkg/logger"
	"golang-stock-sentiment/pkg/utils"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidTicker is returned for an empty ticker symbol.
var ErrInvalidTicker = errors.New("invalid ticker")

type SentimentService interface {
	Analyze(ctx context.Context, ticker string, opts dto.AnalyzeOptions) (*dto.AnalysisResult, error)
}

type sentimentService struct {
	cfg       *config.Config
	log       *logger.Logger
	clock     clockwork.Clock
	cacheRepo repository.SentimentCacheRepository
	fetcher   PostFetcherService
	scorer    *scoring.Context
}

func NewSentimentService(
	cfg *config.Config,
	log *logger.Logger,
	clock clockwork.Clock,
	cacheRepo repository.SentimentCacheRepository,
	fetcher PostFetcherService,
	scorer *scoring.Context,
) SentimentService {
	return &sentimentService{
		cfg:       cfg,
		log:       log,
		clock:     clock,
		cacheRepo: cacheRepo,
		fetcher:   fetcher,
		scorer:    scorer,
	}
}

// NormalizeTicker lowercases a ticker and strips a leading cashtag marker.
func NormalizeTicker(ticker string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ticker), "$"))
}

// Analyze returns the cached aggregate when it is younger than the cache TTL, otherwise it
// fetches posts, scores each of them and stores the new aggregate.
func (s *sentimentService) Analyze(ctx context.Context, ticker string, opts dto.AnalyzeOptions) (*dto.AnalysisResult, error) {
	ticker = NormalizeTicker(ticker)
	if ticker == "" {
		return nil, ErrInvalidTicker
	}
	ctx = logger.WithContext(ctx, logger.StringField("run_id", uuid.NewString()), logger.StringField("ticker", ticker))

	if !opts.SkipCache {
		if cached, ok := s.lookupCache(ctx, ticker); ok {
			return cached, nil
		}
	}

	posts, err := s.fetcher.FetchPosts(ctx, ticker)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to fetch posts", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to fetch posts for %s: %w", ticker, err)
	}

	scored := s.scorePosts(ctx, posts)

	scores := make([]float64, len(scored))
	methods := map[string]int{}
	for i, p := range scored {
		scores[i] = p.Score
		methods[string(p.Method)]++
	}
	score := scoring.Aggregate(scores)
	now := s.clock.Now()

	s.log.InfoContext(ctx, "Sentiment computed",
		logger.FloatField("score", score),
		logger.IntField("sample_size", len(posts)),
		logger.Field("methods", methods),
	)

	entry := entity.SentimentCache{
		Ticker:     ticker,
		Score:      score,
		Timestamp:  utils.FormatTimestamp(now),
		SampleSize: len(posts),
	}
	if err := s.cacheRepo.Save(ctx, entry); err != nil {
		s.log.WarnContext(ctx, "Failed to store sentiment cache", logger.ErrorField(err))
	}

	return &dto.AnalysisResult{
		Ticker:     ticker,
		Score:      score,
		SampleSize: len(posts),
		ComputedAt: now,
		Methods:    methods,
	}, nil
}

func (s *sentimentService) lookupCache(ctx context.Context, ticker string) (*dto.AnalysisResult, bool) {
	entry, err := s.cacheRepo.Get(ctx, ticker)
	if err != nil {
		if !errors.Is(err, repository.ErrCacheMiss) {
			s.log.WarnContext(ctx, "Failed to read sentiment cache, treating as miss", logger.ErrorField(err))
		}
		return nil, false
	}

	now := s.clock.Now()
	if !entry.IsFresh(now, s.cfg.Analyzer.CacheTTL) {
		s.log.DebugContext(ctx, "Sentiment cache is stale", logger.StringField("timestamp", entry.Timestamp))
		return nil, false
	}

	computedAt, _ := utils.ParseTimestamp(entry.Timestamp)
	s.log.DebugContext(ctx, "Returning cached sentiment", logger.FloatField("score", entry.Score))
	return &dto.AnalysisResult{
		Ticker:     ticker,
		Score:      entry.Score,
		SampleSize: entry.SampleSize,
		Cached:     true,
		ComputedAt: computedAt,
	}, true
}

// scorePosts scores posts on a bounded worker pool. Per post failures are already
// resolved by the scoring context, so no worker returns an error.
func (s *sentimentService) scorePosts(ctx context.Context, posts []entity.Post) []scoring.ScoredPost {
	scored := make([]scoring.ScoredPost, len(posts))
	if len(posts) == 0 {
		return scored
	}

	workers := s.cfg.Analyzer.Workers
	if workers <= 0 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, post := range posts {
		g.Go(func() error {
			scored[i] = s.scorer.Score(gctx, post.Text)
			if scored[i].Err != nil {
				s.log.DebugContext(ctx, "Post scored with lexical fallback",
					logger.StringField("source", post.Source),
					logger.ErrorField(scored[i].Err),
				)
			}
			return nil
		})
	}
	_ = g.Wait()

	return scored
}
