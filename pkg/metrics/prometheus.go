// Package metrics provides Prometheus metrics for the match engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Matching outcomes.
	matchesCreated    prometheus.Counter
	duplicateMatches  prometheus.Counter
	matchWriteErrors  prometheus.Counter
	candidatesScored  prometheus.Counter
	matchScore        prometheus.Histogram
	matchRunLatency   prometheus.Histogram
	batchRuns         prometheus.Counter
	batchRunLatency   prometheus.Histogram
	matchDecisions    *prometheus.CounterVec
	intentsEmitted    prometheus.Counter
	intentEmitErrors  prometheus.Counter
	triggersCoalesced prometheus.Counter

	// Queue and worker health.
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueues      prometheus.Counter
	queueEnqueueErrors prometheus.Counter
	workerCount        prometheus.Gauge
	workerRunErrors    prometheus.Counter

	// HTTP surface.
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global manager on a custom registry so the exposed endpoint only carries
// our own series.
var (
	globalManager  *Manager              //nolint:gochecknoglobals // singleton metrics manager
	customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry
)

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// Registry returns the registry carrying all service metrics, for exposing
// via promhttp.
func Registry() *prometheus.Registry { return customRegistry }

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "gebeya",
		subsystem:        "match",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.matchesCreated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matches_created_total",
		Help:      "Total number of matches persisted",
	})

	m.duplicateMatches = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "duplicate_matches_total",
		Help:      "Total number of candidate pairs skipped because a match already existed",
	})

	m.matchWriteErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "match_write_errors_total",
		Help:      "Total number of non-duplicate match persistence failures",
	})

	m.candidatesScored = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "candidates_scored_total",
		Help:      "Total number of listings scored against buy requests",
	})

	m.matchScore = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "score",
		Help:      "Distribution of compatibility scores for admitted matches",
		Buckets:   []float64{50, 55, 60, 65, 70, 75, 80, 85, 90, 95, 100},
	})

	m.matchRunLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "run_latency_milliseconds",
		Help:      "Latency of a single orchestrator run in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.batchRuns = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batch_runs_total",
		Help:      "Total number of batch re-match sweeps",
	})

	m.batchRunLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batch_run_latency_milliseconds",
		Help:      "Latency of a full batch re-match sweep in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.matchDecisions = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "match_decisions_total",
			Help:      "Total number of accept and reject decisions recorded on matches",
		},
		[]string{"status"},
	)

	m.intentsEmitted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "notification_intents_total",
		Help:      "Total number of notification intents handed to the emitter",
	})

	m.intentEmitErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "notification_intent_errors_total",
		Help:      "Total number of emitter failures",
	})

	m.triggersCoalesced = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "triggers_coalesced_total",
		Help:      "Total number of match triggers dropped because the request was already queued",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current number of queued match jobs",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Configured capacity of the match job queue",
	})

	m.queueEnqueues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueues_total",
		Help:      "Total number of jobs accepted by the queue",
	})

	m.queueEnqueueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_errors_total",
		Help:      "Total number of jobs rejected by the queue (full or closed)",
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Number of running match workers",
	})

	m.workerRunErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_run_errors_total",
		Help:      "Total number of orchestrator runs that failed inside a worker",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint, method and status",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)
}

// Package-level recording helpers against the global manager.

func RecordMatchCreated(score int) {
	globalManager.matchesCreated.Inc()
	globalManager.matchScore.Observe(float64(score))
}

func RecordMatchDecision(status string) {
	globalManager.matchDecisions.WithLabelValues(status).Inc()
}

func RecordDuplicateMatch()     { globalManager.duplicateMatches.Inc() }
func RecordMatchWriteError()    { globalManager.matchWriteErrors.Inc() }
func RecordCandidateScored()    { globalManager.candidatesScored.Inc() }
func RecordBatchRun()           { globalManager.batchRuns.Inc() }
func RecordIntentEmitted()      { globalManager.intentsEmitted.Inc() }
func RecordIntentEmitError()    { globalManager.intentEmitErrors.Inc() }
func RecordTriggerCoalesced()   { globalManager.triggersCoalesced.Inc() }
func RecordQueueEnqueue()       { globalManager.queueEnqueues.Inc() }
func RecordQueueEnqueueError()  { globalManager.queueEnqueueErrors.Inc() }
func RecordWorkerRunError()     { globalManager.workerRunErrors.Inc() }

func RecordMatchRunLatency(ms float64) { globalManager.matchRunLatency.Observe(ms) }
func RecordBatchRunLatency(ms float64) { globalManager.batchRunLatency.Observe(ms) }

func UpdateQueueSize(n int)     { globalManager.queueSize.Set(float64(n)) }
func UpdateQueueCapacity(n int) { globalManager.queueCapacity.Set(float64(n)) }
func UpdateWorkerCount(n int)   { globalManager.workerCount.Set(float64(n)) }

func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, statusCode string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(ms)
}
