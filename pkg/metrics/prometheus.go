// Package metrics provides Prometheus metrics for the PELE scoring service.
package metrics

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every PELE metric.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	runBuckets       []float64
	enabled          bool
	customLabels     map[string]string
	registry         prometheus.Registerer
	gatherer         *prometheus.Registry

	// Pipeline
	pipelineRuns     *prometheus.CounterVec
	pipelineDuration prometheus.Histogram
	recordsIngested  prometheus.Counter
	groupsScored     prometheus.Gauge
	schemaErrors     *prometheus.CounterVec
	warnings         *prometheus.CounterVec
	lastRunUnix      prometheus.Gauge

	// Results store
	storedPlayers   prometheus.Gauge
	storeOpDuration *prometheus.HistogramVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec
}

// Global metrics manager instance, swapped by Configure.
var globalManager atomic.Pointer[Manager] //nolint:gochecknoglobals // singleton metrics manager

func init() { //nolint:gochecknoinits // global metrics setup
	Configure()
}

// Configure replaces the global manager with one built from opts on a fresh
// registry, so /metrics never exposes the default Go collectors. Call it
// once at startup, before any recorder runs.
func Configure(opts ...Option) *Manager {
	registry := prometheus.NewRegistry()
	m := NewManager(append(opts[:len(opts):len(opts)], WithPrometheusRegistry(registry))...)
	m.gatherer = registry
	globalManager.Store(m)
	return m
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "pele",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		runBuckets:       defaultRunBuckets,
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	}
}

// Runs include loading the input, so they span milliseconds to minutes.
var defaultRunBuckets = []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300} //nolint:gochecknoglobals // constant buckets

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.pipelineRuns = auto.NewCounterVec(
		m.counterOpts("pipeline_runs_total", "Scoring runs by outcome"),
		[]string{"outcome"},
	)
	runOpts := m.histogramOpts("pipeline_duration_seconds", "Duration of a scoring run including input load")
	runOpts.Buckets = m.runBuckets
	m.pipelineDuration = auto.NewHistogram(runOpts)
	m.recordsIngested = auto.NewCounter(
		m.counterOpts("records_ingested_total", "Match records passed to the engine"),
	)
	m.groupsScored = auto.NewGauge(
		m.gaugeOpts("groups_scored", "Output rows of the latest run"),
	)
	m.schemaErrors = auto.NewCounterVec(
		m.counterOpts("schema_errors_total", "Runs aborted by a schema violation, by field"),
		[]string{"field"},
	)
	m.warnings = auto.NewCounterVec(
		m.counterOpts("degenerate_warnings_total", "Degenerate input warnings by kind"),
		[]string{"kind"},
	)
	m.lastRunUnix = auto.NewGauge(
		m.gaugeOpts("last_run_timestamp_seconds", "Unix time of the latest successful run"),
	)

	m.storedPlayers = auto.NewGauge(
		m.gaugeOpts("stored_players", "Entries held by the results store"),
	)
	m.storeOpDuration = auto.NewHistogramVec(
		m.histogramOpts("store_operation_duration_seconds", "Results store operation duration"),
		[]string{"operation"},
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "HTTP requests by route, method and status"),
		[]string{"route", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_seconds", "HTTP request duration"),
		[]string{"route", "method", "status_code"},
	)

	m.errorsByComponent = auto.NewCounterVec(
		m.counterOpts("errors_total", "Errors by component and type"),
		[]string{"component", "type"},
	)
}

// RecordPipelineRun counts a run and observes its duration.
func RecordPipelineRun(outcome string, seconds float64) {
	m := globalManager.Load()
	if !m.enabled {
		return
	}
	m.pipelineRuns.WithLabelValues(outcome).Inc()
	m.pipelineDuration.Observe(seconds)
}

// RecordRecordsIngested adds n to the ingested records counter.
func RecordRecordsIngested(n int) {
	m := globalManager.Load()
	if !m.enabled || n <= 0 {
		return
	}
	m.recordsIngested.Add(float64(n))
}

// UpdateGroupsScored sets the output size of the latest run.
func UpdateGroupsScored(n int) {
	m := globalManager.Load()
	if !m.enabled {
		return
	}
	m.groupsScored.Set(float64(n))
}

// RecordSchemaError counts a schema violation on field.
func RecordSchemaError(field string) {
	m := globalManager.Load()
	if !m.enabled {
		return
	}
	m.schemaErrors.WithLabelValues(field).Inc()
}

// RecordWarning counts a degenerate input warning.
func RecordWarning(kind string) {
	m := globalManager.Load()
	if !m.enabled {
		return
	}
	m.warnings.WithLabelValues(kind).Inc()
}

// UpdateLastRun records the completion time of a successful run.
func UpdateLastRun(t time.Time) {
	m := globalManager.Load()
	if !m.enabled {
		return
	}
	m.lastRunUnix.Set(float64(t.Unix()))
}

// UpdateStoredPlayers sets the number of stored entries.
func UpdateStoredPlayers(n int) {
	m := globalManager.Load()
	if !m.enabled {
		return
	}
	m.storedPlayers.Set(float64(n))
}

// RecordStoreOperation observes a store operation duration.
func RecordStoreOperation(op string, seconds float64) {
	m := globalManager.Load()
	if !m.enabled {
		return
	}
	m.storeOpDuration.WithLabelValues(op).Observe(seconds)
}

// RecordHTTPRequest counts a request and observes its duration.
func RecordHTTPRequest(route, method string, status int, seconds float64) {
	m := globalManager.Load()
	if !m.enabled {
		return
	}
	code := strconv.Itoa(status)
	m.httpRequests.WithLabelValues(route, method, code).Inc()
	m.httpRequestDuration.WithLabelValues(route, method, code).Observe(seconds)
}

// RecordError counts an error for a component.
func RecordError(component, errorType string) {
	m := globalManager.Load()
	if !m.enabled {
		return
	}
	m.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the registry of the current global manager.
func GetRegistry() *prometheus.Registry {
	return globalManager.Load().gatherer
}
