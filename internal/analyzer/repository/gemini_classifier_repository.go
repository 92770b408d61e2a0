package repository

import (
	"context"
	"fmt"

	"golang-stock-sentiment/internal/analyzer/config"
	"golang-stock-sentiment/internal/analyzer/dto"
	"golang-stock-sentiment/pkg/logger"
	"golang-stock-sentiment/pkg/ratelimit"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// geminiModels is the part of genai.Models used by the classifier.
type geminiModels interface {
	CountTokens(ctx context.Context, model string, contents []*genai.Content, config *genai.CountTokensConfig) (*genai.CountTokensResponse, error)
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// geminiClassifierRepository classifies posts with the Google Gemini API.
type geminiClassifierRepository struct {
	cfg            *config.Config
	logger         *logger.Logger
	models         geminiModels
	tokenLimiter   *ratelimit.TokenLimiter
	requestLimiter *rate.Limiter
}

// NewGeminiClassifierRepository creates a ClassifierRepository on top of a genai client.
func NewGeminiClassifierRepository(cfg *config.Config, log *logger.Logger, genAiClient *genai.Client) ClassifierRepository {
	return newGeminiClassifierRepository(cfg, log, genAiClient.Models)
}

func newGeminiClassifierRepository(cfg *config.Config, log *logger.Logger, models geminiModels) *geminiClassifierRepository {
	return &geminiClassifierRepository{
		cfg:            cfg,
		logger:         log,
		models:         models,
		tokenLimiter:   ratelimit.NewTokenLimiter(cfg.Gemini.MaxTokenPerMinute),
		requestLimiter: ratelimit.NewRequestLimiter(cfg.Gemini.MaxRequestPerMinute),
	}
}

func (r *geminiClassifierRepository) Classify(ctx context.Context, text string) (*dto.Classification, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(BuildClassifyPrompt(text), genai.RoleUser),
	}

	tokenResp, err := r.models.CountTokens(ctx, r.cfg.Gemini.Model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count tokens: %w", err)
	}

	r.logger.DebugContext(ctx, "Gemini token count",
		logger.IntField("total_tokens", int(tokenResp.TotalTokens)),
		logger.IntField("remaining", r.tokenLimiter.GetRemaining()),
	)

	if err := r.tokenLimiter.Wait(ctx, int(tokenResp.TotalTokens)); err != nil {
		return nil, fmt.Errorf("failed to wait for token limit: %w", err)
	}
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	resp, err := r.models.GenerateContent(ctx, r.cfg.Gemini.Model, contents, &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0),
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to generate content with Gemini", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to generate content with Gemini: %w", err)
	}

	raw, err := geminiResponseText(resp)
	if err != nil {
		return nil, err
	}

	result, err := parseClassificationJSON(raw)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to parse Gemini classification", logger.ErrorField(err), logger.StringField("response", raw))
		return nil, err
	}
	return result, nil
}

func geminiResponseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("invalid response from Gemini API: no content found")
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
