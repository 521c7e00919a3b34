// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) initializer to build a Config with defaults.
// - Load layers defaults, an optional YAML file and PAYSCOUT_ env vars.
// - Validation failures wrap ErrInvalidConfig; source failures wrap ErrLoadConfig.
package config

import (
	"context"
	"runtime"
	"time"
)

// Supported generative-AI providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// CatalogPath points to a YAML catalog replacing the embedded one.
	CatalogPath string `koanf:"catalog_path"`

	// DefaultMinRating is applied when a listing request omits min_rating.
	DefaultMinRating float64 `koanf:"default_min_rating"`

	// LLMProvider selects the matchmaker backend: gemini or openai.
	LLMProvider string `koanf:"llm_provider"`

	// LLMModel is the model name sent to the provider.
	LLMModel string `koanf:"llm_model"`

	// LLMBaseURL overrides the provider endpoint.
	LLMBaseURL string `koanf:"llm_base_url"`

	// LLMAPIKey is the provider credential. Empty disables the matchmaker.
	LLMAPIKey string `koanf:"llm_api_key"`

	// MatchTimeoutMS bounds a single outbound matchmaker call.
	MatchTimeoutMS int `koanf:"match_timeout_ms"`

	// MaxPromptLength caps the matchmaker query in runes.
	MaxPromptLength int `koanf:"max_prompt_length"`

	// WorkerCount sets the number of matchmaker workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the in-memory match job queue.
	QueueSize int `koanf:"queue_size"`

	// MatchRatePerSec and MatchRateBurst shape outbound provider calls.
	MatchRatePerSec float64 `koanf:"match_rate_per_sec"`
	MatchRateBurst  int     `koanf:"match_rate_burst"`

	// CacheTTLSec is how long matched outcomes stay cached. Zero disables caching.
	CacheTTLSec int `koanf:"cache_ttl_sec"`

	// RedisURL enables the shared response cache layer when set.
	RedisURL string `koanf:"redis_url"`

	// SessionTTLSec expires idle matchmaker sessions.
	SessionTTLSec int `koanf:"session_ttl_sec"`
}

// New creates a Config with defaults. Context is accepted first to follow
// the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		DefaultMinRating: 3.5,
		LLMProvider:      ProviderGemini,
		LLMModel:         "gemini-2.5-flash",
		MatchTimeoutMS:   30_000,
		MaxPromptLength:  2_000,
		WorkerCount:      runtime.NumCPU() * 2,
		QueueSize:        256,
		MatchRatePerSec:  5,
		MatchRateBurst:   10,
		CacheTTLSec:      600,
		SessionTTLSec:    1_800,
	}
}

// MatchTimeout returns MatchTimeoutMS as a duration.
func (c *Config) MatchTimeout() time.Duration {
	return time.Duration(c.MatchTimeoutMS) * time.Millisecond
}

// CacheTTL returns CacheTTLSec as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSec) * time.Second
}

// SessionTTL returns SessionTTLSec as a duration.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLSec) * time.Second
}
