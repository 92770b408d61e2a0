package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang-stock-sentiment/internal/analyzer/config"
	"golang-stock-sentiment/internal/analyzer/dto"
	"golang-stock-sentiment/pkg/logger"
	"golang-stock-sentiment/pkg/ratelimit"

	"golang.org/x/time/rate"
)

type openaiClassifierRepository struct {
	client         *http.Client
	cfg            *config.Config
	logger         *logger.Logger
	tokenLimiter   *ratelimit.TokenLimiter
	requestLimiter *rate.Limiter
}

// NewOpenAIClassifierRepository creates a ClassifierRepository for any OpenAI compatible chat completion API.
func NewOpenAIClassifierRepository(cfg *config.Config, log *logger.Logger) ClassifierRepository {
	return &openaiClassifierRepository{
		client: &http.Client{
			Timeout: 90 * time.Second,
		},
		cfg:            cfg,
		logger:         log,
		tokenLimiter:   ratelimit.NewTokenLimiter(cfg.OpenAI.MaxTokenPerMinute),
		requestLimiter: ratelimit.NewRequestLimiter(cfg.OpenAI.MaxRequestPerMinute),
	}
}

func (r *openaiClassifierRepository) Classify(ctx context.Context, text string) (*dto.Classification, error) {
	resp, err := r.sendRequest(ctx, BuildClassifyPrompt(text))
	if err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("no content found in OpenAI response")
	}

	result, err := parseClassificationJSON(resp.Choices[0].Message.Content)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to parse OpenAI classification", logger.ErrorField(err), logger.StringField("response", resp.Choices[0].Message.Content))
		return nil, err
	}
	return result, nil
}

func (r *openaiClassifierRepository) sendRequest(ctx context.Context, prompt string) (*dto.OpenAIResponse, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	payload := dto.OpenAIRequest{
		Model: r.cfg.OpenAI.Model,
		Messages: []dto.Message{
			{Role: "user", Content: prompt},
		},
		Temperature:    0,
		ResponseFormat: &dto.ResponseFormat{Type: "json_object"},
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.OpenAI.BaseURL, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return nil, fmt.Errorf("failed to create new http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", r.cfg.OpenAI.APIKey))

	r.logger.DebugContext(ctx, "Sending request to OpenAI API", logger.StringField("url", r.cfg.OpenAI.BaseURL), logger.StringField("model", r.cfg.OpenAI.Model))

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to OpenAI API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.logger.ErrorContext(ctx, "Received non-OK response from OpenAI API", logger.IntField("status_code", resp.StatusCode), logger.StringField("model", r.cfg.OpenAI.Model))
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("received non-OK response from OpenAI API: %d - %s", resp.StatusCode, string(body))
	}

	var openaiResp dto.OpenAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&openaiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}

	// Token usage is only known after the call, so it is charged against the next request.
	if err := r.tokenLimiter.Wait(ctx, openaiResp.Usage.TotalTokens); err != nil {
		r.logger.WarnContext(ctx, "Failed to wait for token limit", logger.ErrorField(err))
	}

	return &openaiResp, nil
}
