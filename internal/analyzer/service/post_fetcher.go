package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang-stock-sentiment/internal/analyzer/repository"
	"golang-stock-sentiment/internal/entity"
	"golang-stock-sentiment/pkg/logger"
	"golang-stock-sentiment/pkg/utils"
)

// PostSource is one platform queried for posts, with its result cap.
type PostSource struct {
	Repository repository.PostSourceRepository
	MaxResults int
}

type PostFetcherService interface {
	FetchPosts(ctx context.Context, ticker string) ([]entity.Post, error)
}

type postFetcherService struct {
	log     *logger.Logger
	sources []PostSource
	timeout time.Duration
}

// NewPostFetcherService queries sources concurrently. Posts are returned in source order.
// A non-positive timeout disables the fetch deadline.
func NewPostFetcherService(log *logger.Logger, timeout time.Duration, sources ...PostSource) PostFetcherService {
	return &postFetcherService{
		log:     log,
		sources: sources,
		timeout: timeout,
	}
}

// FetchPosts blocks until every source has answered. A failing source contributes no
// posts; only when every source fails is an error returned.
func (s *postFetcherService) FetchPosts(ctx context.Context, ticker string) ([]entity.Post, error) {
	if len(s.sources) == 0 {
		return nil, nil
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	results := make([][]string, len(s.sources))
	errs := make([]error, len(s.sources))

	var wg sync.WaitGroup
	for i, source := range s.sources {
		errs[i] = fmt.Errorf("source %s did not complete", source.Repository.Name())
		wg.Add(1)
		utils.GoSafe(func() {
			defer wg.Done()
			start := time.Now()
			posts, err := source.Repository.SearchPosts(ctx, ticker, source.MaxResults)
			results[i], errs[i] = posts, err
			s.log.DebugContext(ctx, "Source query finished",
				logger.StringField("source", source.Repository.Name()),
				logger.IntField("count", len(posts)),
				logger.DurationField("elapsed", time.Since(start)),
			)
		})
	}
	wg.Wait()

	var (
		posts  []entity.Post
		failed []error
	)
	for i, source := range s.sources {
		if errs[i] != nil {
			s.log.WarnContext(ctx, "Source query failed, continuing without its posts",
				logger.StringField("source", source.Repository.Name()),
				logger.ErrorField(errs[i]),
			)
			failed = append(failed, fmt.Errorf("%s: %w", source.Repository.Name(), errs[i]))
			continue
		}
		for _, text := range results[i] {
			posts = append(posts, entity.Post{Source: source.Repository.Name(), Text: text})
		}
	}

	if len(failed) == len(s.sources) {
		return nil, fmt.Errorf("all post sources failed: %w", errors.Join(failed...))
	}
	return posts, nil
}
