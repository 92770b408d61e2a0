package config

import (
	"time"

	"golang-stock-sentiment/pkg/config"
)

// Analyzer holds the tuning knobs of a sentiment run.
type Analyzer struct {
	CacheTTL          time.Duration `mapstructure:"cache_ttl"`
	FetchTimeout      time.Duration `mapstructure:"fetch_timeout"`
	Workers           int           `mapstructure:"workers"`
	AmbiguousLow      float64       `mapstructure:"ambiguous_low"`
	AmbiguousHigh     float64       `mapstructure:"ambiguous_high"`
	MaxClassifierText int           `mapstructure:"max_classifier_text"`
	DenylistTerms     []string      `mapstructure:"denylist_terms"`
}

// Twitter holds the configuration for the X/Twitter recent search API.
type Twitter struct {
	BaseURL             string `mapstructure:"base_url"`
	BearerToken         string `mapstructure:"bearer_token"`
	MaxResults          int    `mapstructure:"max_results"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// Farcaster holds the configuration for the Farcaster cast search API.
type Farcaster struct {
	BaseURL             string `mapstructure:"base_url"`
	APIKey              string `mapstructure:"api_key"`
	MaxResults          int    `mapstructure:"max_results"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// AI holds configuration for the escalation classifier.
type AI struct {
	Provider string `mapstructure:"provider"`
	// BreakerFailures is the number of consecutive classifier failures that opens the circuit.
	BreakerFailures int           `mapstructure:"breaker_failures"`
	BreakerTimeout  time.Duration `mapstructure:"breaker_timeout"`
}

// Gemini holds the configuration for the Gemini API.
type Gemini struct {
	APIKey              string `mapstructure:"api_key"`
	Model               string `mapstructure:"model"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
	MaxTokenPerMinute   int    `mapstructure:"max_token_per_minute"`
}

// OpenAI holds the configuration for an OpenAI compatible chat completion API.
type OpenAI struct {
	BaseURL             string `mapstructure:"base_url"`
	APIKey              string `mapstructure:"api_key"`
	Model               string `mapstructure:"model"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
	MaxTokenPerMinute   int    `mapstructure:"max_token_per_minute"`
}

// HuggingFace holds the configuration for the HuggingFace inference API.
type HuggingFace struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	// Labels names the classes of Model by index, resolving generic LABEL_<n> outputs.
	// Binary SST-2 models are [negative positive]; 3-class models such as
	// cardiffnlp/twitter-roberta-base-sentiment are [negative neutral positive].
	Labels              []string `mapstructure:"labels"`
	MaxRequestPerMinute int      `mapstructure:"max_request_per_minute"`
}

// Cache holds configuration for the sentiment cache store.
type Cache struct {
	Driver   string `mapstructure:"driver"`
	FilePath string `mapstructure:"file_path"`
}

// Telegram holds configuration for the Telegram notifier.
type Telegram struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Config holds the full configuration of the sentiment CLI.
type Config struct {
	App         config.App    `mapstructure:"app"`
	Logger      config.Logger `mapstructure:"logger"`
	Redis       config.Redis  `mapstructure:"redis"`
	Analyzer    Analyzer      `mapstructure:"analyzer"`
	Twitter     Twitter       `mapstructure:"twitter"`
	Farcaster   Farcaster     `mapstructure:"farcaster"`
	AI          AI            `mapstructure:"ai"`
	Gemini      Gemini        `mapstructure:"gemini"`
	OpenAI      OpenAI        `mapstructure:"openai"`
	HuggingFace HuggingFace   `mapstructure:"huggingface"`
	Cache       Cache         `mapstructure:"cache"`
	Telegram    Telegram      `mapstructure:"telegram"`
}

// Defaults returns the default value of every configuration key.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"app.name":    "stock-sentiment",
		"app.env":     "local",
		"app.version": "dev",

		"logger.level":    "info",
		"logger.encoding": "console",

		"redis.host":      "localhost",
		"redis.port":      6379,
		"redis.password":  "",
		"redis.db":        0,
		"redis.pool_size": 4,

		"analyzer.cache_ttl":           "270s",
		"analyzer.fetch_timeout":       "30s",
		"analyzer.workers":             4,
		"analyzer.ambiguous_low":       0.4,
		"analyzer.ambiguous_high":      0.6,
		"analyzer.max_classifier_text": 512,
		"analyzer.denylist_terms":      []string{"rug pull", "rugpull", "scam", "pump and dump", "honeypot", "exit scam", "ponzi"},

		"twitter.base_url":               "https://api.twitter.com",
		"twitter.bearer_token":           "",
		"twitter.max_results":            200,
		"twitter.max_request_per_minute": 60,

		"farcaster.base_url":               "https://api.neynar.com",
		"farcaster.api_key":                "",
		"farcaster.max_results":            100,
		"farcaster.max_request_per_minute": 60,

		"ai.provider":         "gemini",
		"ai.breaker_failures": 3,
		"ai.breaker_timeout":  "60s",

		"gemini.api_key":                "",
		"gemini.model":                  "gemini-2.0-flash",
		"gemini.max_request_per_minute": 15,
		"gemini.max_token_per_minute":   1000000,

		"openai.base_url":               "https://api.openai.com/v1/chat/completions",
		"openai.api_key":                "",
		"openai.model":                  "gpt-4o-mini",
		"openai.max_request_per_minute": 60,
		"openai.max_token_per_minute":   200000,

		"huggingface.base_url":               "https://api-inference.huggingface.co/models",
		"huggingface.api_key":                "",
		"huggingface.model":                  "distilbert/distilbert-base-uncased-finetuned-sst-2-english",
		"huggingface.labels":                 []string{"negative", "positive"},
		"huggingface.max_request_per_minute": 60,

		"cache.driver":    "file",
		"cache.file_path": "sentiment_cache.json",

		"telegram.bot_token": "",
		"telegram.chat_id":   0,
	}
}

// Load loads the configuration from the given path, falling back to defaults and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, Defaults(), &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
