// Package metrics provides Prometheus metrics for the leaguecast forecast service.
package metrics

import (
	"context"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the forecast service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Forecast jobs
	jobsSubmitted prometheus.Counter
	jobsDuplicate prometheus.Counter
	jobsCompleted prometheus.Counter
	jobsFailed    prometheus.Counter
	jobDuration   prometheus.Histogram

	// Simulation engine
	simulations    *prometheus.CounterVec
	batches        *prometheus.CounterVec
	batchLatency   prometheus.Histogram
	leaguesLoaded  prometheus.Gauge
	matchesLoaded  prometheus.Gauge
	championChance *prometheus.GaugeVec

	// Persistence and notification adapters
	matchesPersisted  prometheus.Counter
	notifications     *prometheus.CounterVec
	websocketClients  prometheus.Gauge
	persistenceErrors prometheus.Counter

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Queue Metrics
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Worker Metrics
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	errorsByComponent *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "leaguecast",
		subsystem:        "forecast",
		histogramBuckets: prometheus.ExponentialBuckets(1, 2, 16),
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		constLabels:      make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: m.histogramBuckets,
	})
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.jobsSubmitted = m.counter("jobs_submitted_total", "Total number of forecast jobs accepted")
	m.jobsDuplicate = m.counter("jobs_duplicate_total", "Total number of forecast jobs rejected as duplicates")
	m.jobsCompleted = m.counter("jobs_completed_total", "Total number of forecast jobs completed")
	m.jobsFailed = m.counter("jobs_failed_total", "Total number of forecast jobs that failed")
	m.jobDuration = m.histogram("job_duration_milliseconds", "Histogram of forecast job duration in milliseconds")

	m.simulations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "simulated_worlds_total",
		Help: "Total number of simulated seasons by league",
	}, []string{"league"})
	m.batches = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "batches_total",
		Help: "Total number of simulation batches by league",
	}, []string{"league"})
	m.batchLatency = m.histogram("batch_latency_milliseconds", "Histogram of batch draw, rank and aggregate latency")
	m.leaguesLoaded = m.gauge("leagues_loaded", "Number of leagues in the loaded dataset")
	m.matchesLoaded = m.gauge("matches_loaded", "Number of matches in the loaded dataset")
	m.championChance = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "champion_probability",
		Help: "Title probability of the most likely champion of the latest forecast",
	}, []string{"league", "team"})

	m.matchesPersisted = m.counter("matches_persisted_total", "Total number of simulated matches written to storage")
	m.persistenceErrors = m.counter("persistence_errors_total", "Total number of failed storage writes")
	m.notifications = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "notifications_total",
		Help: "Total number of forecast notifications by channel and outcome",
	}, []string{"channel", "outcome"})
	m.websocketClients = m.gauge("websocket_clients", "Number of connected websocket clients")

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "http_requests_total",
		Help: "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name:    "http_request_duration_milliseconds",
		Help:    "HTTP request duration in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.queueSize = m.gauge("queue_size", "Current number of queued forecast jobs")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum capacity of the job queue")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Job queue utilization ratio (0-1)")
	m.queueEnqueueRate = m.counter("queue_enqueue_total", "Total number of jobs enqueued")
	m.queueDequeueRate = m.counter("queue_dequeue_total", "Total number of jobs dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Total number of rejected enqueues")

	m.workerActiveCount = m.gauge("worker_active_count", "Number of forecast workers")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Worker job processing latency in milliseconds")
	m.workerErrors = m.counter("worker_errors_total", "Total number of worker errors")

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "errors_by_component_total",
		Help: "Total number of errors by component and type",
	}, []string{"component", "error_type"})

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap memory in use in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
}

// active returns the global manager when collection is on.
func active() *Manager {
	if globalManager == nil || !globalManager.enabled {
		return nil
	}
	return globalManager
}

// Forecast job metrics.

func RecordJobSubmitted() {
	if m := active(); m != nil {
		m.jobsSubmitted.Inc()
	}
}

func RecordJobDuplicate() {
	if m := active(); m != nil {
		m.jobsDuplicate.Inc()
	}
}

func RecordJobCompleted(durationMs float64) {
	if m := active(); m != nil {
		m.jobsCompleted.Inc()
		m.jobDuration.Observe(durationMs)
	}
}

func RecordJobFailed() {
	if m := active(); m != nil {
		m.jobsFailed.Inc()
	}
}

// Simulation metrics.

func RecordBatch(league string, worlds int, latencyMs float64) {
	if m := active(); m != nil {
		m.batches.WithLabelValues(league).Inc()
		m.simulations.WithLabelValues(league).Add(float64(worlds))
		m.batchLatency.Observe(latencyMs)
	}
}

func UpdateDatasetSize(leagues, matches int) {
	if m := active(); m != nil {
		m.leaguesLoaded.Set(float64(leagues))
		m.matchesLoaded.Set(float64(matches))
	}
}

func UpdateChampionProbability(league, team string, p float64) {
	if m := active(); m != nil {
		m.championChance.DeletePartialMatch(prometheus.Labels{"league": league})
		m.championChance.WithLabelValues(league, team).Set(p)
	}
}

// Adapter metrics.

func RecordMatchesPersisted(n int) {
	if m := active(); m != nil {
		m.matchesPersisted.Add(float64(n))
	}
}

func RecordPersistenceError() {
	if m := active(); m != nil {
		m.persistenceErrors.Inc()
	}
}

func RecordNotification(channel, outcome string) {
	if m := active(); m != nil {
		m.notifications.WithLabelValues(channel, outcome).Inc()
	}
}

func UpdateWebsocketClients(n int) {
	if m := active(); m != nil {
		m.websocketClients.Set(float64(n))
	}
}

// HTTP metrics.

func RecordHTTPRequest(endpoint, method, statusCode string) {
	if m := active(); m != nil {
		m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if m := active(); m != nil {
		m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
	}
}

// Queue metrics.

func UpdateQueueSize(size int) {
	if m := active(); m != nil {
		m.queueSize.Set(float64(size))
	}
}

func UpdateQueueCapacity(capacity int) {
	if m := active(); m != nil {
		m.queueCapacity.Set(float64(capacity))
	}
}

func UpdateQueueUtilization(utilization float64) {
	if m := active(); m != nil {
		m.queueUtilization.Set(utilization)
	}
}

func RecordQueueEnqueue() {
	if m := active(); m != nil {
		m.queueEnqueueRate.Inc()
	}
}

func RecordQueueDequeue() {
	if m := active(); m != nil {
		m.queueDequeueRate.Inc()
	}
}

func RecordQueueEnqueueError() {
	if m := active(); m != nil {
		m.queueEnqueueErrors.Inc()
	}
}

// Worker metrics.

func UpdateWorkerActiveCount(count int) {
	if m := active(); m != nil {
		m.workerActiveCount.Set(float64(count))
	}
}

func RecordWorkerProcessingLatency(latencyMs float64) {
	if m := active(); m != nil {
		m.workerProcessingLatency.Observe(latencyMs)
	}
}

func RecordWorkerError() {
	if m := active(); m != nil {
		m.workerErrors.Inc()
	}
}

// RecordErrorByComponent counts an error of errorType raised by component.
func RecordErrorByComponent(component, errorType string) {
	if m := active(); m != nil {
		m.errorsByComponent.WithLabelValues(component, errorType).Inc()
	}
}

// System metrics.

func UpdateSystemMemoryUsage(bytes uint64) {
	if m := active(); m != nil {
		m.systemMemoryUsage.Set(float64(bytes))
	}
}

func UpdateSystemGoroutineCount(count int) {
	if m := active(); m != nil {
		m.systemGoroutineCount.Set(float64(count))
	}
}

// CollectSystemMetrics samples memory and goroutine gauges once.
func CollectSystemMetrics() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	UpdateSystemMemoryUsage(ms.HeapInuse)
	UpdateSystemGoroutineCount(runtime.NumGoroutine())
}

// StartSystemCollector refreshes system gauges until ctx is done.
func StartSystemCollector(ctx context.Context) {
	interval := defaultRefreshInterval
	if globalManager != nil {
		interval = globalManager.refreshInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	CollectSystemMetrics()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			CollectSystemMetrics()
		}
	}
}

// GetRegistry returns the registry backing the global metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
