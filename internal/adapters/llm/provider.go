// Package llm talks to generative-AI services that return structured JSON.
package llm

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/okian/payscout/pkg/metrics"
)

// Provider defines the interface for generative-AI providers.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// Generate sends one request and returns the raw text of the first candidate.
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

// GenerateRequest is a single-turn structured generation request.
type GenerateRequest struct {
	// SystemInstruction frames the task for the model.
	SystemInstruction string

	// Prompt is the user content.
	Prompt string

	// Schema constrains the response to JSON of this shape. Nil means free text.
	Schema *Schema

	// Model overrides the configured model.
	Model string
}

// GenerateResponse carries the model output.
type GenerateResponse struct {
	// Text is the raw candidate text, JSON when a schema was given.
	Text string

	// Model is the model that produced the response.
	Model string

	// TokensUsed tracks token consumption when the provider reports it.
	TokensUsed int
}

// Config holds provider configuration.
type Config struct {
	// Provider name: "gemini" (default) or "openai".
	Provider string

	// Model name (provider-specific).
	Model string

	// APIKey is required by every provider.
	APIKey string

	// BaseURL overrides the provider endpoint.
	BaseURL string

	// Timeout bounds each HTTP round trip.
	Timeout time.Duration

	// HTTPClient replaces the default client, mostly for tests.
	HTTPClient *http.Client
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: "gemini",
		Model:    DefaultGeminiModel,
		Timeout:  30 * time.Second,
	}
}

func (c Config) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// observe records one outbound call.
func observe(provider string, start time.Time, err error) {
	status := "ok"
	var httpErr *HTTPError
	switch {
	case err == nil:
	case errors.Is(err, context.DeadlineExceeded):
		status = "timeout"
	case errors.Is(err, context.Canceled):
		status = "canceled"
	case errors.As(err, &httpErr):
		status = "http_" + httpErr.StatusClass()
	case errors.Is(err, ErrEmptyResponse):
		status = "empty"
	default:
		status = "error"
	}
	metrics.RecordLLMRequest(provider, status, float64(time.Since(start).Milliseconds()))
}
