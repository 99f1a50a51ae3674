// Package metrics provides Prometheus metrics for the intervue engine.
package metrics

import (
	"slices"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the intervue service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Engine metrics
	operations          *prometheus.CounterVec
	toggleRollbacks     prometheus.Counter
	feedbackTransitions *prometheus.CounterVec
	inflightRejections  *prometheus.CounterVec
	activeSessions      prometheus.Gauge

	// Interview Service client metrics
	remoteCallDuration *prometheus.HistogramVec
	remoteErrors       *prometheus.CounterVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Journal queue metrics
	queueSize              prometheus.Gauge
	queueCapacity          prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueueRate       prometheus.Counter
	queueDequeueRate       prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// Journal worker metrics
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter
	journalWrites           *prometheus.CounterVec

	errorRateByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Configure replaces the global manager with one built from opts on a fresh
// registry. Call it at startup before anything is recorded.
func Configure(opts ...Option) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	globalManager = NewManager(append(slices.Clone(opts), WithPrometheusRegistry(reg))...)
	customRegistry = reg
	return reg
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "intervue",
		subsystem:        "engine",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	}, labels)
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
		Buckets:   m.histogramBuckets,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
		Buckets:   m.histogramBuckets,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.operations = m.counterVec("operations_total",
		"Engine operations by name and outcome (ok or error label)", "operation", "outcome")
	m.toggleRollbacks = m.counter("toggle_rollbacks_total",
		"Optimistic active-toggle updates rolled back after a failed confirmation")
	m.feedbackTransitions = m.counterVec("feedback_transitions_total",
		"Interview status transitions caused by feedback submissions", "status")
	m.inflightRejections = m.counterVec("inflight_rejections_total",
		"Submissions rejected because an identical one was in flight", "operation")
	m.activeSessions = m.gauge("sessions_active",
		"Sessions held by the in-memory session store")

	m.remoteCallDuration = m.histogramVec("remote_call_duration_milliseconds",
		"Interview Service call latency in milliseconds", "endpoint", "outcome")
	m.remoteErrors = m.counterVec("remote_errors_total",
		"Interview Service failures by endpoint and error kind", "endpoint", "kind")

	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	m.queueSize = m.gauge("journal_queue_size", "Current size of the journal queue")
	m.queueCapacity = m.gauge("journal_queue_capacity", "Maximum journal queue capacity")
	m.queueUtilization = m.gauge("journal_queue_utilization_ratio", "Journal queue utilization ratio (size / capacity)")
	m.queueEnqueueRate = m.counter("journal_queue_enqueue_total", "Total number of journal entries enqueued")
	m.queueDequeueRate = m.counter("journal_queue_dequeue_total", "Total number of journal entries dequeued")
	m.queueEnqueueErrors = m.counter("journal_queue_enqueue_errors_total", "Journal entries dropped at enqueue")
	m.queueProcessingLatency = m.histogram("journal_queue_processing_latency_milliseconds", "Journal enqueue latency in milliseconds")

	m.workerCount = m.gauge("journal_worker_count", "Configured journal workers")
	m.workerActiveCount = m.gauge("journal_worker_active_count", "Journal workers currently running")
	m.workerProcessingLatency = m.histogram("journal_worker_processing_latency_milliseconds", "Journal write latency in milliseconds")
	m.workerErrorRate = m.counter("journal_worker_errors_total", "Journal write failures")
	m.journalWrites = m.counterVec("journal_writes_total", "Journal entries written by sink", "sink")

	m.errorRateByComponent = m.counterVec("errors_by_component_total",
		"Total number of errors by component", "component", "error_type")
}

// RecordOperation counts one engine operation with its outcome.
func RecordOperation(operation, outcome string) {
	globalManager.operations.WithLabelValues(operation, outcome).Inc()
}

// RecordToggleRollback counts a rolled back active toggle.
func RecordToggleRollback() {
	globalManager.toggleRollbacks.Inc()
}

// RecordFeedbackTransition counts a status reached through feedback.
func RecordFeedbackTransition(status string) {
	globalManager.feedbackTransitions.WithLabelValues(status).Inc()
}

// RecordInflightRejection counts a duplicate submission.
func RecordInflightRejection(operation string) {
	globalManager.inflightRejections.WithLabelValues(operation).Inc()
}

// UpdateActiveSessions sets the number of held sessions.
func UpdateActiveSessions(count int) {
	globalManager.activeSessions.Set(float64(count))
}

// RecordRemoteCall observes one Interview Service call.
func RecordRemoteCall(endpoint, outcome string, latencyMs float64) {
	globalManager.remoteCallDuration.WithLabelValues(endpoint, outcome).Observe(latencyMs)
}

// RecordRemoteError counts a classified Interview Service failure.
func RecordRemoteError(endpoint, kind string) {
	globalManager.remoteErrors.WithLabelValues(endpoint, kind).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Queue Metrics Functions.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordQueueProcessingLatency records queue processing latency.
func RecordQueueProcessingLatency(latencyMs float64) {
	globalManager.queueProcessingLatency.Observe(latencyMs)
}

// Worker Metrics Functions.

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of active workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrorRate.Inc()
}

// RecordJournalWrite counts an entry persisted by sink.
func RecordJournalWrite(sink string) {
	globalManager.journalWrites.WithLabelValues(sink).Inc()
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
