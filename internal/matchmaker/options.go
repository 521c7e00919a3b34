package matchmaker

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/okian/payscout/internal/adapters/cache"
	"github.com/okian/payscout/internal/adapters/llm"
	"github.com/okian/payscout/pkg/logger"
)

// Option applies a configuration option to the Matcher.
type Option func(*Matcher)

// WithProvider sets the generative-AI provider. A nil provider makes every
// request fail with the retry message.
func WithProvider(p llm.Provider) Option {
	return func(m *Matcher) {
		m.provider = p
	}
}

// WithModel overrides the provider's default model; it also scopes cache keys.
func WithModel(model string) Option {
	return func(m *Matcher) {
		m.model = model
	}
}

// WithTimeout bounds each outbound call.
func WithTimeout(d time.Duration) Option {
	return func(m *Matcher) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// WithMaxPromptLength sets the maximum prompt length in runes.
func WithMaxPromptLength(n int) Option {
	return func(m *Matcher) {
		if n > 0 {
			m.maxPromptLength = n
		}
	}
}

// WithCache enables result caching for ttl.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(m *Matcher) {
		m.cache = c
		m.cacheTTL = ttl
	}
}

// WithRateLimit sets the outbound token bucket.
func WithRateLimit(perSec float64, burst int) Option {
	return func(m *Matcher) {
		if perSec > 0 && burst > 0 {
			m.limiter = rate.NewLimiter(rate.Limit(perSec), burst)
		}
	}
}

// WithLogger sets a custom logger for the matcher.
func WithLogger(l logger.Logger) Option {
	return func(m *Matcher) {
		if l != nil {
			m.logger = l
		}
	}
}
