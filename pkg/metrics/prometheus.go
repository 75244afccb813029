// Package metrics provides Prometheus metrics for the FocusForge service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Tracker metrics - the tick loop and idle detection
	ticksFocused    prometheus.Counter
	ticksDistracted prometheus.Counter
	idleEpisodes    prometheus.Counter
	purchases       prometheus.Counter
	equips          prometheus.Counter

	// Persistence metrics - per-tier flush outcomes
	flushAttempts *prometheus.CounterVec
	flushFailures *prometheus.CounterVec
	flushLatency  prometheus.Histogram
	flushDropped  prometheus.Counter

	// Server metrics
	activeSessions prometheus.Gauge
	accountsTotal  prometheus.Gauge
	authFailures   prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "focusforge",
		subsystem:        "tracker",
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
	factory := promauto.With(m.registry)

	m.ticksFocused = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ticks_focused_total",
		Help:      "Ticks credited as focused time.",
	})
	m.ticksDistracted = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ticks_distracted_total",
		Help:      "Ticks counted while an idle episode was open.",
	})
	m.idleEpisodes = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "idle_episodes_total",
		Help:      "Idle episodes that crossed the inactivity threshold.",
	})
	m.purchases = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "purchases_total",
		Help:      "Completed shop purchases.",
	})
	m.equips = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "equips_total",
		Help:      "Completed equip operations.",
	})

	m.flushAttempts = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "flush_attempts_total",
		Help:      "Snapshot flush attempts by persistence tier.",
	}, []string{"tier"})
	m.flushFailures = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "flush_failures_total",
		Help:      "Snapshot flush failures by persistence tier.",
	}, []string{"tier"})
	m.flushLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "flush_latency_ms",
		Help:      "End-to-end flush latency in milliseconds.",
		Buckets:   m.histogramBuckets,
	})
	m.flushDropped = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "flush_dropped_total",
		Help:      "Flush submissions dropped because the pipeline was closed.",
	})

	m.activeSessions = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "server",
		Name:      "active_sessions",
		Help:      "Authenticated sessions currently alive.",
	})
	m.accountsTotal = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "server",
		Name:      "accounts_total",
		Help:      "Registered accounts.",
	})
	m.authFailures = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "server",
		Name:      "auth_failures_total",
		Help:      "Failed login or resume attempts.",
	})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by endpoint, method and status code.",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_ms",
		Help:      "HTTP request duration in milliseconds.",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
}

// Package-level helpers record against the global manager.

func RecordFocusedTick() {
	globalManager.ticksFocused.Inc()
}

func RecordDistractedTick() {
	globalManager.ticksDistracted.Inc()
}

func RecordIdleEpisode() {
	globalManager.idleEpisodes.Inc()
}

func RecordPurchase() {
	globalManager.purchases.Inc()
}

func RecordEquip() {
	globalManager.equips.Inc()
}

func RecordFlushAttempt(tier string) {
	globalManager.flushAttempts.WithLabelValues(tier).Inc()
}

func RecordFlushFailure(tier string) {
	globalManager.flushFailures.WithLabelValues(tier).Inc()
}

func RecordFlushLatency(latencyMs float64) {
	globalManager.flushLatency.Observe(latencyMs)
}

func RecordFlushDropped() {
	globalManager.flushDropped.Inc()
}

func UpdateActiveSessions(count int) {
	globalManager.activeSessions.Set(float64(count))
}

func UpdateAccountsTotal(count int) {
	globalManager.accountsTotal.Set(float64(count))
}

func RecordAuthFailure() {
	globalManager.authFailures.Inc()
}

func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// GetRegistry returns the custom registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
