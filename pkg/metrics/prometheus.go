// Package metrics provides Prometheus metrics for the payscout service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the payscout service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Catalog Metrics
	catalogCategories prometheus.Gauge
	catalogPlatforms  *prometheus.GaugeVec
	catalogProofs     prometheus.Gauge
	catalogLoadTime   prometheus.Gauge

	// Filter Metrics
	filterRequests *prometheus.CounterVec
	filterResults  *prometheus.HistogramVec

	// Matchmaker Metrics
	matchOutcomes       *prometheus.CounterVec
	matchLatency        prometheus.Histogram
	matchCacheHits      prometheus.Counter
	matchCacheMisses    prometheus.Counter
	matchDroppedRecs    *prometheus.CounterVec
	matchStaleResponses prometheus.Counter
	matchSessions       prometheus.Gauge

	// LLM Metrics
	llmRequests *prometheus.CounterVec
	llmLatency  *prometheus.HistogramVec

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Queue Metrics
	queueSize              prometheus.Gauge
	queueCapacity          prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueueRate       prometheus.Counter
	queueDequeueRate       prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// Worker Metrics
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "payscout",
		subsystem:        "api",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// RefreshInterval reports how often gauge updaters should run.
func (m *Manager) RefreshInterval() time.Duration {
	return m.refreshInterval
}

// Enabled reports whether recording is active.
func (m *Manager) Enabled() bool {
	return m.enabled
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // comprehensive metrics initialization
	auto := promauto.With(m.registry)

	// Catalog
	m.catalogCategories = auto.NewGauge(m.gaugeOpts("catalog_categories", "Number of categories in the loaded catalog"))
	m.catalogPlatforms = auto.NewGaugeVec(
		m.gaugeOpts("catalog_platforms", "Number of platforms per category"),
		[]string{"category"},
	)
	m.catalogProofs = auto.NewGauge(m.gaugeOpts("catalog_proofs", "Number of payment-proof records"))
	m.catalogLoadTime = auto.NewGauge(m.gaugeOpts("catalog_loaded_unix", "Unix timestamp of the last catalog load"))

	// Filters
	m.filterRequests = auto.NewCounterVec(
		m.counterOpts("filter_requests_total", "Total number of filter evaluations by view"),
		[]string{"view"},
	)
	m.filterResults = auto.NewHistogramVec(
		m.histogramOpts("filter_results", "Number of records left after filtering",
			[]float64{0, 1, 2, 5, 10, 20, 50, 100}),
		[]string{"view"},
	)

	// Matchmaker
	m.matchOutcomes = auto.NewCounterVec(
		m.counterOpts("matchmaker_outcomes_total", "Matchmaker outcomes by state"),
		[]string{"state"},
	)
	m.matchLatency = auto.NewHistogram(m.histogramOpts(
		"matchmaker_latency_milliseconds", "End-to-end matchmaker latency in milliseconds", m.histogramBuckets))
	m.matchCacheHits = auto.NewCounter(m.counterOpts("matchmaker_cache_hits_total", "Matchmaker response cache hits"))
	m.matchCacheMisses = auto.NewCounter(m.counterOpts("matchmaker_cache_misses_total", "Matchmaker response cache misses"))
	m.matchDroppedRecs = auto.NewCounterVec(
		m.counterOpts("matchmaker_dropped_recommendations_total", "Recommendations dropped during validation"),
		[]string{"reason"},
	)
	m.matchStaleResponses = auto.NewCounter(m.counterOpts(
		"matchmaker_stale_responses_total", "Responses discarded because a newer request superseded them"))
	m.matchSessions = auto.NewGauge(m.gaugeOpts(
		"matchmaker_sessions", "Number of tracked matchmaker sessions"))

	// LLM
	m.llmRequests = auto.NewCounterVec(
		m.counterOpts("llm_requests_total", "Outbound generative-AI requests by provider and status"),
		[]string{"provider", "status"},
	)
	m.llmLatency = auto.NewHistogramVec(
		m.histogramOpts("llm_latency_milliseconds", "Outbound generative-AI latency in milliseconds", m.histogramBuckets),
		[]string{"provider"},
	)

	// HTTP
	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	// Queue
	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Current size of the match job queue"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Maximum queue capacity"))
	m.queueUtilization = auto.NewGauge(m.gaugeOpts("queue_utilization_ratio", "Queue utilization ratio (current size / capacity)"))
	m.queueEnqueueRate = auto.NewCounter(m.counterOpts("queue_enqueue_total", "Total number of jobs enqueued"))
	m.queueDequeueRate = auto.NewCounter(m.counterOpts("queue_dequeue_total", "Total number of jobs dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counterOpts("queue_enqueue_errors_total", "Total number of enqueue errors"))
	m.queueProcessingLatency = auto.NewHistogram(m.histogramOpts(
		"queue_processing_latency_milliseconds", "Time a job waited in the queue in milliseconds", m.histogramBuckets))

	// Workers
	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Configured number of workers"))
	m.workerActiveCount = auto.NewGauge(m.gaugeOpts("worker_active_count", "Number of workers currently processing a job"))
	m.workerProcessingLatency = auto.NewHistogram(m.histogramOpts(
		"worker_processing_latency_milliseconds", "Worker processing latency in milliseconds", m.histogramBuckets))
	m.workerErrorRate = auto.NewCounter(m.counterOpts("worker_errors_total", "Total number of worker errors"))

	// Errors
	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"},
	)
	m.errorRateByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Total number of errors by type"),
		[]string{"error_type", "severity"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)
	m.errorLatency = auto.NewHistogramVec(
		m.histogramOpts("error_latency_milliseconds", "Latency of operations that resulted in errors", m.histogramBuckets),
		[]string{"component", "error_type"},
	)

	// System
	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts(
		"system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}))
}

// Catalog Metrics Functions.

// UpdateCatalogCategories sets the number of categories.
func UpdateCatalogCategories(count int) {
	if !globalManager.enabled {
		return
	}
	globalManager.catalogCategories.Set(float64(count))
}

// UpdateCatalogPlatforms sets the number of platforms in a category.
func UpdateCatalogPlatforms(category string, count int) {
	if !globalManager.enabled {
		return
	}
	globalManager.catalogPlatforms.WithLabelValues(category).Set(float64(count))
}

// UpdateCatalogProofs sets the number of payment-proof records.
func UpdateCatalogProofs(count int) {
	if !globalManager.enabled {
		return
	}
	globalManager.catalogProofs.Set(float64(count))
}

// MarkCatalogLoaded records the time the catalog was loaded.
func MarkCatalogLoaded(at time.Time) {
	if !globalManager.enabled {
		return
	}
	globalManager.catalogLoadTime.Set(float64(at.Unix()))
}

// Filter Metrics Functions.

// RecordFilter records one filter evaluation and its result size.
func RecordFilter(view string, results int) {
	if !globalManager.enabled {
		return
	}
	globalManager.filterRequests.WithLabelValues(view).Inc()
	globalManager.filterResults.WithLabelValues(view).Observe(float64(results))
}

// Matchmaker Metrics Functions.

// RecordMatchOutcome increments the outcome counter for state.
func RecordMatchOutcome(state string) {
	if !globalManager.enabled {
		return
	}
	globalManager.matchOutcomes.WithLabelValues(state).Inc()
}

// RecordMatchLatency records end-to-end matchmaker latency.
func RecordMatchLatency(latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.matchLatency.Observe(latencyMs)
}

// RecordMatchCacheHit increments the response cache hit counter.
func RecordMatchCacheHit() {
	if !globalManager.enabled {
		return
	}
	globalManager.matchCacheHits.Inc()
}

// RecordMatchCacheMiss increments the response cache miss counter.
func RecordMatchCacheMiss() {
	if !globalManager.enabled {
		return
	}
	globalManager.matchCacheMisses.Inc()
}

// RecordDroppedRecommendation counts a recommendation rejected for reason.
func RecordDroppedRecommendation(reason string) {
	if !globalManager.enabled {
		return
	}
	globalManager.matchDroppedRecs.WithLabelValues(reason).Inc()
}

// RecordStaleResponse counts a response superseded by a newer request.
func RecordStaleResponse() {
	if !globalManager.enabled {
		return
	}
	globalManager.matchStaleResponses.Inc()
}

// UpdateMatchSessions sets the number of tracked sessions.
func UpdateMatchSessions(count int) {
	if !globalManager.enabled {
		return
	}
	globalManager.matchSessions.Set(float64(count))
}

// LLM Metrics Functions.

// RecordLLMRequest records one outbound call with its status and latency.
func RecordLLMRequest(provider, status string, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.llmRequests.WithLabelValues(provider, status).Inc()
	globalManager.llmLatency.WithLabelValues(provider).Observe(latencyMs)
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Queue Metrics Functions.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	if !globalManager.enabled {
		return
	}
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	if !globalManager.enabled {
		return
	}
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	if !globalManager.enabled {
		return
	}
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	if !globalManager.enabled {
		return
	}
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	if !globalManager.enabled {
		return
	}
	globalManager.queueEnqueueErrors.Inc()
}

// RecordQueueProcessingLatency records how long a job waited in the queue.
func RecordQueueProcessingLatency(latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.queueProcessingLatency.Observe(latencyMs)
}

// Worker Metrics Functions.

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	if !globalManager.enabled {
		return
	}
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of busy workers.
func UpdateWorkerActiveCount(count int) {
	if !globalManager.enabled {
		return
	}
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	if !globalManager.enabled {
		return
	}
	globalManager.workerErrorRate.Inc()
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	if !globalManager.enabled {
		return
	}
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	if !globalManager.enabled {
		return
	}
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
