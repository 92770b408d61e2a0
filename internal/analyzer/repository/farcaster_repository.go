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

const farcasterMaxPageSize = 100

type farcasterRepository struct {
	cfg            *config.Config
	log            *logger.Logger
	httpClient     *http.Client
	requestLimiter *rate.Limiter
}

// NewFarcasterRepository creates a PostSourceRepository backed by the Farcaster cast search API.
func NewFarcasterRepository(cfg *config.Config, log *logger.Logger) PostSourceRepository {
	return &farcasterRepository{
		cfg: cfg,
		log: log,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		requestLimiter: ratelimit.NewRequestLimiter(cfg.Farcaster.MaxRequestPerMinute),
	}
}

func (r *farcasterRepository) Name() string {
	return common.SourceFarcaster
}

// SearchPosts pages through casts containing the ticker cashtag until maxResults is reached.
func (r *farcasterRepository) SearchPosts(ctx context.Context, ticker string, maxResults int) ([]string, error) {
	if r.cfg.Farcaster.APIKey == "" {
		return nil, fmt.Errorf("farcaster api key is not configured")
	}

	var (
		posts  []string
		cursor string
	)
	for len(posts) < maxResults {
		pageSize := clampPageSize(maxResults-len(posts), 1, farcasterMaxPageSize)
		page, err := r.searchPage(ctx, ticker, pageSize, cursor)
		if err != nil {
			return nil, err
		}

		for _, cast := range page.Result.Casts {
			if len(posts) >= maxResults {
				break
			}
			text := cleanPostText(cast.Text)
			if text == "" {
				continue
			}
			posts = append(posts, text)
		}

		if page.Result.Next.Cursor == "" || len(page.Result.Casts) == 0 {
			break
		}
		cursor = page.Result.Next.Cursor
	}

	r.log.DebugContext(ctx, "Farcaster search finished", logger.StringField("ticker", ticker), logger.IntField("count", len(posts)))
	return posts, nil
}

func (r *farcasterRepository) searchPage(ctx context.Context, ticker string, pageSize int, cursor string) (*dto.FarcasterSearchResponse, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	query := url.Values{}
	query.Set("q", cashtag(ticker))
	query.Set("limit", strconv.Itoa(pageSize))
	if cursor != "" {
		query.Set("cursor", cursor)
	}
	apiURL := fmt.Sprintf("%s/v2/farcaster/cast/search?%s", r.cfg.Farcaster.BaseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create new http request: %w", err)
	}
	req.Header.Set("x-api-key", r.cfg.Farcaster.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.log.ErrorContext(ctx, "Failed to send request to Farcaster API", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to send request to Farcaster API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		r.log.ErrorContext(ctx, "Received non-OK response from Farcaster API", logger.IntField("status_code", resp.StatusCode))
		return nil, fmt.Errorf("received non-OK response from Farcaster API: %d - %s", resp.StatusCode, string(body))
	}

	var page dto.FarcasterSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode Farcaster response body: %w", err)
	}
	return &page, nil
}
