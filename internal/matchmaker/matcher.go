package matchmaker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/okian/payscout/internal/adapters/cache"
	"github.com/okian/payscout/internal/adapters/llm"
	"github.com/okian/payscout/internal/domain/model"
	"github.com/okian/payscout/pkg/logger"
	"github.com/okian/payscout/pkg/metrics"
)

// Default matcher configuration constants.
const (
	defaultTimeout         = 30 * time.Second
	defaultMaxPromptLength = 2000
	defaultRatePerSec      = 5
	defaultRateBurst       = 10
)

// Catalog supplies the platforms offered to the model.
type Catalog interface {
	AllPlatforms(ctx context.Context) []model.Platform
}

// Matcher resolves one prompt to an outcome. It never returns an error:
// every failure becomes a user-facing state.
type Matcher struct {
	catalog         Catalog
	provider        llm.Provider
	model           string
	timeout         time.Duration
	maxPromptLength int
	cache           cache.Cache
	cacheTTL        time.Duration
	limiter         *rate.Limiter
	logger          logger.Logger
}

// NewMatcher creates a matcher over catalog.
func NewMatcher(catalog Catalog, opts ...Option) *Matcher {
	m := &Matcher{
		catalog:         catalog,
		timeout:         defaultTimeout,
		maxPromptLength: defaultMaxPromptLength,
		limiter:         rate.NewLimiter(rate.Limit(defaultRatePerSec), defaultRateBurst),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = logger.Get().Named("matchmaker")
	}
	return m
}

// NewOutcome builds an outcome for state with its standard message.
func NewOutcome(state model.MatchState) model.MatchOutcome {
	out := model.MatchOutcome{State: state, Recommendations: []model.MatchResult{}}
	switch state {
	case model.MatchNoMatch:
		out.Message = MessageNoMatch
	case model.MatchFailed, model.MatchBusy:
		out.Message = MessageFailed
	case model.MatchInvalidInput:
		out.Message = MessageEmptyPrompt
	case model.MatchStale:
		out.Message = MessageStale
	case model.MatchMatched:
	}
	return out
}

// Check validates a prompt without any outbound call.
// It returns the trimmed prompt, or an invalid_input outcome.
func (m *Matcher) Check(prompt string) (string, *model.MatchOutcome) {
	trimmed := strings.TrimSpace(prompt)
	if trimmed == "" {
		out := NewOutcome(model.MatchInvalidInput)
		return "", &out
	}
	if utf8.RuneCountInString(trimmed) > m.maxPromptLength {
		out := NewOutcome(model.MatchInvalidInput)
		out.Message = fmt.Sprintf("Please keep your request under %d characters.", m.maxPromptLength)
		return "", &out
	}
	return trimmed, nil
}

// Resolve runs the full pipeline for one prompt.
func (m *Matcher) Resolve(ctx context.Context, prompt string) model.MatchOutcome {
	start := time.Now()
	defer func() {
		metrics.RecordMatchLatency(float64(time.Since(start).Milliseconds()))
	}()

	prompt, invalid := m.Check(prompt)
	if invalid != nil {
		return *invalid
	}

	if m.provider == nil {
		m.logger.Error(ctx, "matchmaker request failed", logger.Error(ErrNoProvider))
		return NewOutcome(model.MatchFailed)
	}

	key := cache.Key(m.model+"@"+m.provider.Name(), prompt)
	if out, ok := m.cached(ctx, key); ok {
		return out
	}

	results, err := m.generate(ctx, prompt)
	if err != nil {
		m.logger.Error(ctx, "matchmaker request failed",
			logger.String("provider", m.provider.Name()),
			logger.Error(err),
		)
		metrics.RecordErrorByComponent("matchmaker", "generate")
		return NewOutcome(model.MatchFailed)
	}
	if len(results) == 0 {
		return NewOutcome(model.MatchNoMatch)
	}

	m.store(ctx, key, results)
	out := NewOutcome(model.MatchMatched)
	out.Recommendations = results
	return out
}

func (m *Matcher) generate(ctx context.Context, prompt string) ([]model.MatchResult, error) {
	platforms := m.catalog.AllPlatforms(ctx)
	content, err := UserContent(Project(platforms), prompt)
	if err != nil {
		return nil, err
	}

	// The timeout bounds the limiter wait and the provider call together.
	callCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	if m.limiter != nil {
		if err := m.limiter.Wait(callCtx); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRateLimited, err)
		}
	}

	resp, err := m.provider.Generate(callCtx, llm.GenerateRequest{
		SystemInstruction: SystemInstruction,
		Prompt:            content,
		Schema:            ResponseSchema(),
		Model:             m.model,
	})
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	recs, err := DecodeResponse(resp.Text)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]model.Platform, len(platforms))
	for _, p := range platforms {
		byName[p.Name] = p
	}
	results, dropped := Reconcile(recs, byName)
	for _, d := range dropped {
		metrics.RecordDroppedRecommendation(d.Reason)
		m.logger.Warn(ctx, "dropped recommendation",
			logger.String("platform", d.PlatformName),
			logger.String("reason", d.Reason),
		)
	}
	return results, nil
}

func (m *Matcher) cached(ctx context.Context, key string) (model.MatchOutcome, bool) {
	if m.cache == nil {
		return model.MatchOutcome{}, false
	}
	raw, ok := m.cache.Get(ctx, key)
	if !ok {
		metrics.RecordMatchCacheMiss()
		return model.MatchOutcome{}, false
	}
	var results []model.MatchResult
	if err := json.Unmarshal(raw, &results); err != nil || len(results) == 0 {
		m.logger.Warn(ctx, "discarding unreadable cache entry", logger.String("key", key))
		_ = m.cache.Delete(ctx, key)
		metrics.RecordMatchCacheMiss()
		return model.MatchOutcome{}, false
	}
	metrics.RecordMatchCacheHit()
	out := NewOutcome(model.MatchMatched)
	out.Recommendations = results
	out.Cached = true
	return out, true
}

func (m *Matcher) store(ctx context.Context, key string, results []model.MatchResult) {
	if m.cache == nil {
		return
	}
	raw, err := json.Marshal(results)
	if err != nil {
		m.logger.Warn(ctx, "cache encode failed", logger.Error(err))
		return
	}
	if err := m.cache.Set(ctx, key, raw, m.cacheTTL); err != nil {
		m.logger.Warn(ctx, "cache write failed", logger.Error(err))
	}
}
