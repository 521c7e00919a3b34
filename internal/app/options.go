package service

import (
	"time"

	"github.com/okian/payscout/internal/adapters/cache"
	"github.com/okian/payscout/internal/adapters/llm"
	"github.com/okian/payscout/internal/adapters/repository"
	"github.com/okian/payscout/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStore sets the catalog store. Without it Start loads the embedded catalog.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithProvider sets the generative-AI provider used by the matchmaker.
func WithProvider(provider llm.Provider) Option {
	return func(s *Service) {
		s.provider = provider
	}
}

// WithModel overrides the provider's default model.
func WithModel(model string) Option {
	return func(s *Service) {
		s.model = model
	}
}

// WithWorkerCount sets the number of matchmaker workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of pending matchmaker jobs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithMatchTimeout bounds each outbound matchmaker call.
func WithMatchTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.matchTimeout = d
		}
	}
}

// WithMaxPromptLength sets the maximum prompt length in runes.
func WithMaxPromptLength(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxPromptLength = n
		}
	}
}

// WithCache enables matchmaker result caching.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithRateLimit sets the outbound token bucket.
func WithRateLimit(perSec float64, burst int) Option {
	return func(s *Service) {
		if perSec > 0 && burst > 0 {
			s.ratePerSec = perSec
			s.rateBurst = burst
		}
	}
}

// WithDefaultMinRating sets the min_rating used when a listing request omits it.
func WithDefaultMinRating(rating float64) Option {
	return func(s *Service) {
		if rating >= 0 && rating <= 5 {
			s.defaultMinRating = rating
		}
	}
}

// WithSessionTTL sets how long idle matchmaker sessions are remembered.
func WithSessionTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.sessionTTL = d
		}
	}
}
