// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/payscout/internal/adapters/cache"
	"github.com/okian/payscout/internal/adapters/llm"
	jobqueue "github.com/okian/payscout/internal/adapters/mq/queue"
	workerpool "github.com/okian/payscout/internal/adapters/mq/worker"
	"github.com/okian/payscout/internal/adapters/repository"
	"github.com/okian/payscout/internal/domain/listing"
	"github.com/okian/payscout/internal/domain/model"
	"github.com/okian/payscout/internal/domain/types"
	"github.com/okian/payscout/internal/matchmaker"
	"github.com/okian/payscout/pkg/logger"
	"github.com/okian/payscout/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultQueueSize       = 256
	defaultMinRating       = 3.5
	defaultMatchTimeout    = 30 * time.Second
	defaultMaxPromptLength = 2000
	defaultRatePerSec      = 5
	defaultRateBurst       = 10
	defaultSessionTTL      = 30 * time.Minute
	shutdownTimeout        = 10 * time.Second
)

// Service implements the API dependencies for the catalog and matchmaker.
type Service struct {
	mu sync.RWMutex

	// Core components
	store     repository.Store
	provider  llm.Provider
	cache     cache.Cache
	matcher   *matchmaker.Matcher
	sequencer *matchmaker.Sequencer
	jobQueue  jobqueue.Queue
	pool      *workerpool.Pool

	// Configuration
	model            string
	workerCount      int
	queueSize        int
	matchTimeout     time.Duration
	maxPromptLength  int
	cacheTTL         time.Duration
	ratePerSec       float64
	rateBurst        int
	defaultMinRating float64
	sessionTTL       time.Duration

	// State
	started bool
	stopCh  chan struct{}
	cancel  context.CancelFunc

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:      runtime.NumCPU() * 2,
		queueSize:        defaultQueueSize,
		matchTimeout:     defaultMatchTimeout,
		maxPromptLength:  defaultMaxPromptLength,
		ratePerSec:       defaultRatePerSec,
		rateBurst:        defaultRateBurst,
		defaultMinRating: defaultMinRating,
		sessionTTL:       defaultSessionTTL,
		stopCh:           make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting payscout service...")

	if s.store == nil {
		store, err := repository.NewMemoryStore(ctx)
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
		s.store = store
		s.logger.Info(ctx, "using embedded catalog")
	}

	if s.provider == nil {
		s.logger.Warn(ctx, "no llm provider configured; matchmaker requests will fail")
	}

	matcherOpts := []matchmaker.Option{
		matchmaker.WithProvider(s.provider),
		matchmaker.WithModel(s.model),
		matchmaker.WithTimeout(s.matchTimeout),
		matchmaker.WithMaxPromptLength(s.maxPromptLength),
		matchmaker.WithRateLimit(s.ratePerSec, s.rateBurst),
		matchmaker.WithLogger(s.logger.Named("matchmaker")),
	}
	if s.cache != nil {
		matcherOpts = append(matcherOpts, matchmaker.WithCache(s.cache, s.cacheTTL))
	}
	s.matcher = matchmaker.NewMatcher(s.store, matcherOpts...)
	s.sequencer = matchmaker.NewSequencer(s.sessionTTL)

	q := jobqueue.NewInMemoryQueue(jobqueue.WithCapacity(s.queueSize))
	s.jobQueue = q
	s.pool = workerpool.NewPool(s.workerCount, q, s.matcher)

	// Workers outlive the startup context; Stop ends them.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.pool.Start(runCtx)

	s.stopCh = make(chan struct{})
	s.started = true
	s.logger.Info(ctx, "payscout service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("platforms", s.store.Count(ctx)),
		logger.Bool("cache", s.cache != nil),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping payscout service...")

	if s.pool != nil {
		if err := s.pool.Shutdown(ctx); err != nil {
			s.logger.Warn(ctx, "worker pool shutdown incomplete", logger.Error(err))
		}
	}
	if s.cancel != nil {
		s.cancel()
	}

	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(ctx, "payscout service stopped")
}

// Categories returns every category descriptor with its platform count.
func (s *Service) Categories(ctx context.Context) ([]types.CategorySummary, error) {
	store, err := s.catalog()
	if err != nil {
		return nil, err
	}

	categories := store.Categories(ctx)
	out := make([]types.CategorySummary, 0, len(categories))
	for _, c := range categories {
		platforms, err := store.Platforms(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", c.ID, err)
		}
		out = append(out, types.CategorySummary{Category: c, PlatformCount: len(platforms)})
	}
	return out, nil
}

// PlatformPage filters one category. Omitted values take the defaults:
// payment method and region "all", max cashout at the category ceiling,
// min rating at the configured default.
func (s *Service) PlatformPage(ctx context.Context, categoryID string, q types.PlatformQuery) (types.PlatformPage, error) {
	store, err := s.catalog()
	if err != nil {
		return types.PlatformPage{}, err
	}

	category, err := store.Category(ctx, categoryID)
	if err != nil {
		return types.PlatformPage{}, err
	}
	platforms, err := store.Platforms(ctx, categoryID)
	if err != nil {
		return types.PlatformPage{}, err
	}

	criteria, ceiling, err := s.platformCriteria(platforms, q)
	if err != nil {
		return types.PlatformPage{}, err
	}

	filtered := listing.FilterPlatforms(platforms, criteria)
	metrics.RecordFilter("platforms", len(filtered))

	views := make([]types.PlatformView, 0, len(filtered))
	for _, p := range filtered {
		views = append(views, platformView(p))
	}

	return types.PlatformPage{
		Category:       category,
		Platforms:      views,
		Total:          len(platforms),
		Shown:          len(views),
		CashoutCeiling: ceiling,
		PaymentMethods: listing.PaymentMethodOptions(platforms),
		Criteria:       criteria,
	}, nil
}

func (s *Service) platformCriteria(platforms []model.Platform, q types.PlatformQuery) (model.FilterCriteria, float64, error) {
	region, err := model.ParseRegion(q.Region)
	if err != nil {
		return model.FilterCriteria{}, 0, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}

	minRating, err := s.minRating(q.MinRating)
	if err != nil {
		return model.FilterCriteria{}, 0, err
	}

	ceiling := listing.CashoutCeiling(platforms)
	maxCashout := ceiling
	if q.MaxCashout != nil {
		if *q.MaxCashout < 0 {
			return model.FilterCriteria{}, 0, fmt.Errorf("%w: max_cashout must not be negative", ErrInvalidQuery)
		}
		maxCashout = min(*q.MaxCashout, ceiling)
	}

	method := q.PaymentMethod
	if method == "" {
		method = model.AllOption
	}

	return model.FilterCriteria{
		PaymentMethod: method,
		Region:        region,
		MaxCashout:    maxCashout,
		MinRating:     minRating,
	}, ceiling, nil
}

func (s *Service) minRating(v *float64) (float64, error) {
	if v == nil {
		return s.defaultMinRating, nil
	}
	if *v < 0 || *v > 5 {
		return 0, fmt.Errorf("%w: min_rating must be within [0,5]", ErrInvalidQuery)
	}
	return *v, nil
}

// ProofPage filters the payment-proof records.
func (s *Service) ProofPage(ctx context.Context, q types.ProofQuery) (types.ProofPage, error) {
	store, err := s.catalog()
	if err != nil {
		return types.ProofPage{}, err
	}

	minRating, err := s.minRating(q.MinRating)
	if err != nil {
		return types.ProofPage{}, err
	}
	category := q.Category
	if category == "" {
		category = model.AllOption
	}
	criteria := model.ProofFilterCriteria{
		Search:    q.Search,
		Category:  category,
		MinRating: minRating,
	}

	proofs := store.Proofs(ctx)
	filtered := listing.FilterProofs(proofs, criteria)
	metrics.RecordFilter("proofs", len(filtered))

	return types.ProofPage{
		Proofs:     filtered,
		Total:      len(proofs),
		Shown:      len(filtered),
		Categories: append([]string(nil), listing.ProofCategoryKeywords...),
		Criteria:   criteria,
	}, nil
}

// PlatformByName looks a platform up by exact name.
func (s *Service) PlatformByName(ctx context.Context, name string) (types.PlatformView, error) {
	store, err := s.catalog()
	if err != nil {
		return types.PlatformView{}, err
	}
	p, err := store.PlatformByName(ctx, name)
	if err != nil {
		return types.PlatformView{}, err
	}
	return platformView(p), nil
}

// Match resolves a matchmaker request. It never fails: every problem is
// reported through the outcome state. An empty sessionID starts a new session.
func (s *Service) Match(ctx context.Context, sessionID, prompt string) model.MatchOutcome {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	s.mu.RLock()
	started, matcher, sequencer, q, stopCh := s.started, s.matcher, s.sequencer, s.jobQueue, s.stopCh
	s.mu.RUnlock()

	finish := func(out model.MatchOutcome, seq uint64) model.MatchOutcome {
		if out.Message == "" && out.State != model.MatchMatched {
			out.Message = matchmaker.NewOutcome(out.State).Message
		}
		if out.Recommendations == nil {
			out.Recommendations = []model.MatchResult{}
		}
		out.SessionID = sessionID
		out.Seq = seq
		metrics.RecordMatchOutcome(string(out.State))
		return out
	}

	if !started {
		s.logWarn(ctx, "matchmaker request before start", sessionID)
		return finish(matchmaker.NewOutcome(model.MatchFailed), 0)
	}

	if _, invalid := matcher.Check(prompt); invalid != nil {
		return finish(*invalid, 0)
	}

	// The ticket supersedes the session's in-flight request only once the
	// queue accepts it; a rejected request leaves that one running.
	ticket := sequencer.Reserve(ctx, sessionID)
	defer ticket.Done()
	jobCtx, seq := ticket.Ctx, ticket.Seq

	reply := make(chan model.MatchOutcome, 1)
	job := model.MatchJob{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Seq:       seq,
		Prompt:    prompt,
		Ctx:       jobCtx,
		Reply:     reply,
	}
	if !q.Enqueue(jobCtx, job) {
		s.logWarn(ctx, "matchmaker queue full", sessionID)
		return finish(matchmaker.NewOutcome(model.MatchBusy), seq)
	}
	ticket.Commit()

	var out model.MatchOutcome
	select {
	case out = <-reply:
	case <-jobCtx.Done():
		out = matchmaker.NewOutcome(model.MatchFailed)
	case <-stopCh:
		out = matchmaker.NewOutcome(model.MatchFailed)
	}

	if !sequencer.IsLatest(sessionID, seq) {
		metrics.RecordStaleResponse()
		return finish(matchmaker.NewOutcome(model.MatchStale), seq)
	}
	return finish(out, seq)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":          s.started,
		"workerCount":      s.workerCount,
		"queueSize":        s.queueSize,
		"defaultMinRating": s.defaultMinRating,
		"provider":         providerName(s.provider),
		"cacheEnabled":     s.cache != nil,
	}

	if s.started {
		queueLen := s.jobQueue.Len(ctx)
		stats["queueLength"] = queueLen
		stats["activeWorkers"] = s.pool.Active()
		stats["sessions"] = s.sequencer.Sessions()
		stats["platforms"] = s.store.Count(ctx)
		stats["categories"] = len(s.store.Categories(ctx))
		stats["proofs"] = len(s.store.Proofs(ctx))

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateWorkerCount(s.workerCount)
		metrics.UpdateMatchSessions(s.sequencer.Sessions())
	}

	return stats
}

func (s *Service) catalog() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

func (s *Service) logWarn(ctx context.Context, msg, sessionID string) {
	s.mu.RLock()
	l := s.logger
	s.mu.RUnlock()
	if l != nil {
		l.Warn(ctx, msg, logger.String("session_id", sessionID))
	}
}

func platformView(p model.Platform) types.PlatformView {
	return types.PlatformView{
		Platform:     p,
		RatingValue:  listing.ParseRating(p.Rating),
		CashoutValue: listing.ParseCashout(p.MinCashout),
		Advisory:     p.Advisory(),
	}
}

func providerName(p llm.Provider) string {
	if p == nil {
		return "none"
	}
	return p.Name()
}
