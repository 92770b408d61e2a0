package main

import (
	"context"
	"fmt"
	"io"

	"golang-stock-sentiment/internal/analyzer/config"
	"golang-stock-sentiment/internal/analyzer/repository"
	"golang-stock-sentiment/internal/analyzer/scoring"
	"golang-stock-sentiment/internal/analyzer/service"
	"golang-stock-sentiment/pkg/common"
	"golang-stock-sentiment/pkg/logger"
	"golang-stock-sentiment/pkg/redis"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// app holds the wired sentiment service and the resources it owns.
type app struct {
	service service.SentimentService
	closers []io.Closer
}

func newApp(ctx context.Context, cfg *config.Config, log *logger.Logger) (*app, error) {
	a := &app{}

	cacheRepo, err := a.buildCacheRepository(cfg)
	if err != nil {
		return nil, err
	}

	classifier, err := buildClassifier(ctx, cfg, log)
	if err != nil {
		a.Close()
		return nil, err
	}

	fetcher := service.NewPostFetcherService(log, cfg.Analyzer.FetchTimeout,
		service.PostSource{Repository: repository.NewTwitterRepository(cfg, log), MaxResults: cfg.Twitter.MaxResults},
		service.PostSource{Repository: repository.NewFarcasterRepository(cfg, log), MaxResults: cfg.Farcaster.MaxResults},
	)

	scorer := scoring.NewContext(scoring.NewVaderModel(), classifier, scoring.Options{
		DenylistTerms:     cfg.Analyzer.DenylistTerms,
		AmbiguousLow:      cfg.Analyzer.AmbiguousLow,
		AmbiguousHigh:     cfg.Analyzer.AmbiguousHigh,
		MaxClassifierText: cfg.Analyzer.MaxClassifierText,
	})

	a.service = service.NewSentimentService(cfg, log, clockwork.NewRealClock(), cacheRepo, fetcher, scorer)
	return a, nil
}

func (a *app) Close() {
	for _, c := range a.closers {
		_ = c.Close()
	}
}

func (a *app) buildCacheRepository(cfg *config.Config) (repository.SentimentCacheRepository, error) {
	switch cfg.Cache.Driver {
	case common.CacheDriverFile, "":
		return repository.NewFileCacheRepository(cfg.Cache.FilePath), nil
	case common.CacheDriverMemory:
		return repository.NewMemoryCacheRepository(cfg.Analyzer.CacheTTL), nil
	case common.CacheDriverRedis:
		redisClient, err := redis.NewClient(redis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize redis cache: %w", err)
		}
		a.closers = append(a.closers, redisClient)
		return repository.NewRedisCacheRepository(redisClient.Client, cfg.Analyzer.CacheTTL), nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Cache.Driver)
	}
}

// buildClassifier returns the escalation classifier behind a circuit breaker, or nil when
// escalation is disabled.
func buildClassifier(ctx context.Context, cfg *config.Config, log *logger.Logger) (repository.ClassifierRepository, error) {
	var classifier repository.ClassifierRepository
	switch cfg.AI.Provider {
	case common.AIProviderNone, "":
		log.Debug("Escalation classifier disabled")
		return nil, nil
	case common.AIProviderGemini:
		if cfg.Gemini.APIKey == "" {
			return disabledClassifier(log, cfg.AI.Provider)
		}
		genAiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.Gemini.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize gemini client: %w", err)
		}
		classifier = repository.NewGeminiClassifierRepository(cfg, log, genAiClient)
	case common.AIProviderOpenAI:
		if cfg.OpenAI.APIKey == "" {
			return disabledClassifier(log, cfg.AI.Provider)
		}
		classifier = repository.NewOpenAIClassifierRepository(cfg, log)
	case common.AIProviderHuggingFace:
		if cfg.HuggingFace.APIKey == "" {
			return disabledClassifier(log, cfg.AI.Provider)
		}
		classifier = repository.NewHuggingFaceClassifierRepository(cfg, log)
	default:
		return nil, fmt.Errorf("invalid ai provider %q", cfg.AI.Provider)
	}

	log.Debug("Escalation classifier enabled", zap.String("provider", cfg.AI.Provider))
	return repository.NewBreakerClassifierRepository(classifier, cfg.AI.Provider, cfg.AI.BreakerFailures, cfg.AI.BreakerTimeout, log), nil
}

func disabledClassifier(log *logger.Logger, provider string) (repository.ClassifierRepository, error) {
	log.Warn("No API key configured for escalation classifier, ambiguous posts keep their base score", zap.String("provider", provider))
	return nil, nil
}
