package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/okian/payscout/internal/adapters/cache"
	"github.com/okian/payscout/internal/adapters/http/api"
	"github.com/okian/payscout/internal/adapters/http/swagger"
	"github.com/okian/payscout/internal/adapters/llm"
	"github.com/okian/payscout/internal/adapters/repository"
	app "github.com/okian/payscout/internal/app"
	"github.com/okian/payscout/internal/config"
	"github.com/okian/payscout/pkg/logger"
	"github.com/okian/payscout/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 60 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	cacheCleanupInterval      = 10 * time.Minute
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// A missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to sync logger: " + err.Error() + "\n")
		}
	}()

	loggerInstance := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc, cleanup, err := newService(ctx, cfg, loggerInstance)
	if err != nil {
		loggerInstance.Error(ctx, "failed to build service", logger.Error(err))
		return
	}
	defer cleanup()

	if err := svc.Start(ctx); err != nil {
		loggerInstance.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// newMux registers the docs and business API routes.
func newMux(ctx context.Context, svc *app.Service) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc).Register(ctx, mux)
	return mux
}

// newService wires catalog, provider and cache into a service.
// The returned cleanup releases external connections.
func newService(ctx context.Context, cfg *config.Config, log logger.Logger) (*app.Service, func(), error) {
	opts := []app.Option{
		app.WithLogger(log),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithModel(cfg.LLMModel),
		app.WithMatchTimeout(cfg.MatchTimeout()),
		app.WithMaxPromptLength(cfg.MaxPromptLength),
		app.WithRateLimit(cfg.MatchRatePerSec, cfg.MatchRateBurst),
		app.WithDefaultMinRating(cfg.DefaultMinRating),
		app.WithSessionTTL(cfg.SessionTTL()),
	}

	if cfg.CatalogPath != "" {
		store, err := repository.NewMemoryStore(ctx, repository.WithCatalogPath(cfg.CatalogPath))
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, app.WithStore(store))
	}

	if provider := newProvider(ctx, cfg, log); provider != nil {
		opts = append(opts, app.WithProvider(provider))
	}

	c, cleanup := newCache(ctx, cfg, log)
	if c != nil {
		opts = append(opts, app.WithCache(c, cfg.CacheTTL()))
	}

	return app.New(opts...), cleanup, nil
}

// newProvider returns nil when the provider cannot be built; the
// matchmaker then reports failures while the catalog keeps working.
func newProvider(ctx context.Context, cfg *config.Config, log logger.Logger) llm.Provider {
	llmCfg := llm.DefaultConfig()
	llmCfg.Provider = cfg.LLMProvider
	llmCfg.Model = cfg.LLMModel
	llmCfg.APIKey = cfg.LLMAPIKey
	llmCfg.BaseURL = cfg.LLMBaseURL
	llmCfg.Timeout = cfg.MatchTimeout()

	provider, err := llm.NewProvider(llmCfg)
	if err != nil {
		log.Warn(ctx, "matchmaker disabled", logger.String("provider", cfg.LLMProvider), logger.Error(err))
		return nil
	}
	return provider
}

// newCache layers an in-process cache over Redis when a URL is configured.
// A zero TTL disables caching.
func newCache(ctx context.Context, cfg *config.Config, log logger.Logger) (cache.Cache, func()) {
	noop := func() {}
	if cfg.CacheTTL() <= 0 {
		return nil, noop
	}

	local := cache.NewMemoryCache(cfg.CacheTTL(), cacheCleanupInterval)
	if cfg.RedisURL == "" {
		return local, noop
	}

	client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Warn(ctx, "redis unavailable; using local cache only", logger.Error(err))
		return local, noop
	}
	shared := cache.NewRedisCache(client)
	return cache.NewLayeredCache(local, shared), func() {
		if err := shared.Close(); err != nil {
			log.Warn(ctx, "redis close failed", logger.Error(err))
		}
	}
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater starts a background goroutine that updates service metrics.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics updates service-level metrics.
func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()

	if queueLen, ok := stats["queueLength"].(int); ok {
		metrics.UpdateQueueSize(queueLen)
	}
	if sessions, ok := stats["sessions"].(int); ok {
		metrics.UpdateMatchSessions(sessions)
	}
	if workerCount, ok := stats["workerCount"].(int); ok {
		metrics.UpdateWorkerCount(workerCount)
	}
}
