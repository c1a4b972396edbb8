// Package metrics provides Prometheus metrics for the salary QA service.
package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultNamespace = "salaryqa"
	defaultSubsystem = "engine"
)

// scoreBuckets cover the 0-100 anomaly and similarity scores.
var scoreBuckets = []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 95, 100} //nolint:gochecknoglobals // constant bucket layout

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Anomaly analysis
	anomalyAnalyses  *prometheus.CounterVec
	anomalyScores    prometheus.Histogram
	insufficientData prometheus.Counter

	// Duplicate detection
	duplicateChecks  *prometheus.CounterVec
	similarityScores prometheus.Histogram

	// Record store
	storeErrors       *prometheus.CounterVec
	storeQueryLatency *prometheus.HistogramVec
	entriesTotal      prometheus.Gauge
	entriesByStatus   *prometheus.GaugeVec

	// Submissions and batch re-analysis
	submissions     *prometheus.CounterVec
	batchProcessed  prometheus.Counter
	batchDowngraded prometheus.Counter
	batchFailed     prometheus.Counter
	batchDuration   prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
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
		namespace:        defaultNamespace,
		subsystem:        defaultSubsystem,
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.NewRegistry(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets,
	})
}

func (m *Manager) histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets,
	}, labels)
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	m.anomalyAnalyses = m.counterVec("anomaly_analyses_total",
		"Anomaly analyses by comparison level and resulting review status", "level", "status")
	m.anomalyScores = m.histogram("anomaly_score", "Distribution of anomaly scores", scoreBuckets)
	m.insufficientData = m.counter("anomaly_insufficient_data_total",
		"Analyses that found fewer comparators than the minimum sample")

	m.duplicateChecks = m.counterVec("duplicate_checks_total",
		"Duplicate checks by outcome (duplicate, unique, error)", "outcome")
	m.similarityScores = m.histogram("similarity_score",
		"Similarity score of the best ranked duplicate candidate", scoreBuckets)

	m.storeErrors = m.counterVec("store_errors_total", "Record store failures by operation", "operation")
	m.storeQueryLatency = m.histogramVec("store_query_latency_milliseconds",
		"Record store query latency in milliseconds", m.histogramBuckets, "operation")
	m.entriesTotal = m.gauge("entries_total", "Entries held by the record store")
	m.entriesByStatus = promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "entries_by_status", Help: "Entries by review status",
	}, []string{"status"})

	m.submissions = m.counterVec("submissions_total", "Submitted entries by assigned review status", "status")
	m.batchProcessed = m.counter("batch_processed_total", "Entries re-analyzed by batch runs")
	m.batchDowngraded = m.counter("batch_downgraded_total", "Approved entries downgraded by batch runs")
	m.batchFailed = m.counter("batch_failed_total", "Entries whose batch re-analysis failed")
	m.batchDuration = m.histogram("batch_duration_seconds", "Duration of batch re-analysis runs",
		[]float64{0.1, 0.5, 1, 5, 10, 30, 60, 300})

	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", m.histogramBuckets, "endpoint", "method", "status_code")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total",
		"Total number of errors by endpoint", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// RecordAnomalyAnalysis counts a completed anomaly analysis.
func RecordAnomalyAnalysis(level, status string) {
	globalManager.anomalyAnalyses.WithLabelValues(level, status).Inc()
}

// ObserveAnomalyScore records an anomaly score.
func ObserveAnomalyScore(score float64) {
	globalManager.anomalyScores.Observe(score)
}

// RecordInsufficientData counts an analysis without enough comparators.
func RecordInsufficientData() {
	globalManager.insufficientData.Inc()
}

// RecordDuplicateCheck counts a duplicate check by outcome.
func RecordDuplicateCheck(outcome string) {
	globalManager.duplicateChecks.WithLabelValues(outcome).Inc()
}

// ObserveSimilarityScore records the best candidate's similarity score.
func ObserveSimilarityScore(score float64) {
	globalManager.similarityScores.Observe(score)
}

// RecordStoreError counts a failed record store operation.
func RecordStoreError(operation string) {
	globalManager.storeErrors.WithLabelValues(operation).Inc()
}

// RecordStoreQueryLatency records a record store query latency.
func RecordStoreQueryLatency(operation string, latencyMs float64) {
	globalManager.storeQueryLatency.WithLabelValues(operation).Observe(latencyMs)
}

// UpdateEntriesTotal sets the number of stored entries.
func UpdateEntriesTotal(count int) {
	globalManager.entriesTotal.Set(float64(count))
}

// UpdateEntriesByStatus sets the number of stored entries in a status.
func UpdateEntriesByStatus(status string, count int) {
	globalManager.entriesByStatus.WithLabelValues(status).Set(float64(count))
}

// RecordSubmission counts a stored submission by review status.
func RecordSubmission(status string) {
	globalManager.submissions.WithLabelValues(status).Inc()
}

// RecordBatchRun records the totals of one batch re-analysis run.
func RecordBatchRun(processed, downgraded, failed int, duration time.Duration) {
	globalManager.batchProcessed.Add(float64(processed))
	globalManager.batchDowngraded.Add(float64(downgraded))
	globalManager.batchFailed.Add(float64(failed))
	globalManager.batchDuration.Observe(duration.Seconds())
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// RegisterProcessCollectors adds the Go runtime and process collectors to the
// custom registry. Collectors that are already registered are skipped.
func RegisterProcessCollectors() error {
	for _, c := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := customRegistry.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return fmt.Errorf("%w: %w", ErrRegister, err)
		}
	}
	return nil
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
