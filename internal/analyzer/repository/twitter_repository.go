package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang-stock-sentiment/internal/analyzer/config"
	"golang-stock-sentiment/internal/analyzer/dto"
	"golang-stock-sentiment/pkg/common"
	"golang-stock-sentiment/pkg/logger"
	"golang-stock-sentiment/pkg/ratelimit"

	"golang.org/x/time/rate"
)

const (
	twitterMinPageSize = 10
	twitterMaxPageSize = 100
)

type twitterRepository struct {
	cfg            *config.Config
	log            *logger.Logger
	httpClient     *http.Client
	requestLimiter *rate.Limiter
}

// NewTwitterRepository creates a PostSourceRepository backed by the X/Twitter recent search API.
func NewTwitterRepository(cfg *config.Config, log *logger.Logger) PostSourceRepository {
	return &twitterRepository{
		cfg: cfg,
		log: log,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		requestLimiter: ratelimit.NewRequestLimiter(cfg.Twitter.MaxRequestPerMinute),
	}
}

func (r *twitterRepository) Name() string {
	return common.SourceTwitter
}

// SearchPosts pages through recent tweets containing the ticker cashtag until maxResults is reached.
func (r *twitterRepository) SearchPosts(ctx context.Context, ticker string, maxResults int) ([]string, error) {
	if r.cfg.Twitter.BearerToken == "" {
		return nil, fmt.Errorf("twitter bearer token is not configured")
	}

	var (
		posts     []string
		nextToken string
	)
	for len(posts) < maxResults {
		pageSize := clampPageSize(maxResults-len(posts), twitterMinPageSize, twitterMaxPageSize)
		page, err := r.searchPage(ctx, ticker, pageSize, nextToken)
		if err != nil {
			return nil, err
		}

		for _, tweet := range page.Data {
			if len(posts) >= maxResults {
				break
			}
			text := cleanPostText(tweet.Text)
			if text == "" {
				continue
			}
			posts = append(posts, text)
		}

		if page.Meta.NextToken == "" || len(page.Data) == 0 {
			break
		}
		nextToken = page.Meta.NextToken
	}

	r.log.DebugContext(ctx, "Twitter search finished", logger.StringField("ticker", ticker), logger.IntField("count", len(posts)))
	return posts, nil
}

func (r *twitterRepository) searchPage(ctx context.Context, ticker string, pageSize int, nextToken string) (*dto.TwitterSearchResponse, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	query := url.Values{}
	query.Set("query", cashtag(ticker))
	query.Set("max_results", strconv.Itoa(pageSize))
	if nextToken != "" {
		query.Set("next_token", nextToken)
	}
	apiURL := fmt.Sprintf("%s/2/tweets/search/recent?%s", r.cfg.Twitter.BaseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create new http request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.cfg.Twitter.BearerToken)
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.log.ErrorContext(ctx, "Failed to send request to Twitter API", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to send request to Twitter API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		r.log.ErrorContext(ctx, "Received non-OK response from Twitter API", logger.IntField("status_code", resp.StatusCode))
		return nil, fmt.Errorf("received non-OK response from Twitter API: %d - %s", resp.StatusCode, string(body))
	}

	var page dto.TwitterSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode Twitter response body: %w", err)
	}
	return &page, nil
}
