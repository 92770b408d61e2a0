package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang-stock-sentiment/internal/analyzer/config"
	"golang-stock-sentiment/internal/analyzer/dto"
	"golang-stock-sentiment/pkg/logger"
	"golang-stock-sentiment/pkg/ratelimit"

	"golang.org/x/time/rate"
)

type huggingFaceClassifierRepository struct {
	client         *http.Client
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
}

// NewHuggingFaceClassifierRepository creates a ClassifierRepository backed by a hosted
// text-classification model on the HuggingFace inference API.
func NewHuggingFaceClassifierRepository(cfg *config.Config, log *logger.Logger) ClassifierRepository {
	return &huggingFaceClassifierRepository{
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
		cfg:            cfg,
		logger:         log,
		requestLimiter: ratelimit.NewRequestLimiter(cfg.HuggingFace.MaxRequestPerMinute),
	}
}

func (r *huggingFaceClassifierRepository) Classify(ctx context.Context, text string) (*dto.Classification, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	jsonPayload, err := json.Marshal(dto.HuggingFaceRequest{Inputs: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	apiURL := fmt.Sprintf("%s/%s", r.cfg.HuggingFace.BaseURL, r.cfg.HuggingFace.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return nil, fmt.Errorf("failed to create new http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.cfg.HuggingFace.APIKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to HuggingFace API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		r.logger.ErrorContext(ctx, "Received non-OK response from HuggingFace API", logger.IntField("status_code", resp.StatusCode), logger.StringField("model", r.cfg.HuggingFace.Model))
		return nil, fmt.Errorf("received non-OK response from HuggingFace API: %d - %s", resp.StatusCode, string(body))
	}

	labels, err := decodeHuggingFaceLabels(body)
	if err != nil {
		return nil, err
	}

	return pickHuggingFaceVerdict(labels, r.cfg.HuggingFace.Labels)
}

// pickHuggingFaceVerdict returns the highest scoring positive or negative label. Generic
// LABEL_<n> names are resolved through the configured label list of the model; other
// classes such as neutral are skipped.
func pickHuggingFaceVerdict(labels []dto.HuggingFaceLabel, classNames []string) (*dto.Classification, error) {
	var best *dto.Classification
	for _, l := range labels {
		name, err := resolveHuggingFaceLabel(l.Label, classNames)
		if err != nil {
			return nil, err
		}
		verdict, err := normalizeClassification(name, l.Score)
		if err != nil {
			continue
		}
		if best == nil || verdict.Confidence > best.Confidence {
			best = verdict
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: no positive or negative label in HuggingFace response", ErrInvalidClassification)
	}
	return best, nil
}

func resolveHuggingFaceLabel(label string, classNames []string) (string, error) {
	idx, ok := strings.CutPrefix(strings.ToUpper(strings.TrimSpace(label)), "LABEL_")
	if !ok {
		return label, nil
	}
	n, err := strconv.Atoi(idx)
	if err != nil || n < 0 || n >= len(classNames) {
		return "", fmt.Errorf("%w: label %q is not in the configured huggingface labels %v", ErrInvalidClassification, label, classNames)
	}
	return classNames[n], nil
}

// decodeHuggingFaceLabels accepts both the flat [{label,score}] and the nested [[{label,score}]] shapes.
func decodeHuggingFaceLabels(body []byte) ([]dto.HuggingFaceLabel, error) {
	var nested [][]dto.HuggingFaceLabel
	if err := json.Unmarshal(body, &nested); err == nil && len(nested) > 0 && len(nested[0]) > 0 {
		return nested[0], nil
	}

	var flat []dto.HuggingFaceLabel
	if err := json.Unmarshal(body, &flat); err != nil {
		return nil, fmt.Errorf("%w: failed to decode HuggingFace response: %v", ErrInvalidClassification, err)
	}
	if len(flat) == 0 {
		return nil, fmt.Errorf("%w: empty HuggingFace response", ErrInvalidClassification)
	}
	return flat, nil
}
