package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Bridge metrics
	Dispatches      *prometheus.CounterVec
	DesktopRequests *prometheus.CounterVec
	DesktopDuration *prometheus.HistogramVec

	// Sandbox metrics
	ScriptRuns     *prometheus.CounterVec
	ScriptDuration prometheus.Histogram
	Callbacks      *prometheus.CounterVec

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.GaugeFunc
	startTime time.Time

	// Snapshot for JSON API - track current values
	snapshot MetricsSnapshot

	mu sync.RWMutex
}

// MetricsSnapshot holds current metric values for JSON API
type MetricsSnapshot struct {
	TotalRequests   int64   `json:"total_requests"`
	TotalErrors     int64   `json:"total_errors"`
	TotalDispatches int64   `json:"total_dispatches"`
	Suppressed      int64   `json:"suppressed"`
	ScriptRuns      int64   `json:"script_runs"`
	TotalDuration   float64 `json:"total_duration"` // sum of all request durations
	RequestCount    int64   `json:"request_count"`  // count for averaging
}

// NewMetrics creates a metrics collector with its own registry, so several
// collectors can coexist in one process.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	start := time.Now()
	m := &Metrics{
		registry:  reg,
		startTime: start,

		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gbbridge_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gbbridge_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gbbridge_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gbbridge_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),

		// Bridge metrics
		Dispatches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gbbridge_dispatches_total",
				Help: "Total number of bridge dispatches",
			},
			[]string{"action", "kind", "outcome"},
		),
		DesktopRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gbbridge_desktop_requests_total",
				Help: "Total number of desktop fallback HTTP requests",
			},
			[]string{"method", "outcome"},
		),
		DesktopDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gbbridge_desktop_request_duration_seconds",
				Help:    "Desktop fallback HTTP request duration in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"method"},
		),

		// Sandbox metrics
		ScriptRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gbbridge_script_runs_total",
				Help: "Total number of page script runs",
			},
			[]string{"outcome"},
		),
		ScriptDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "gbbridge_script_duration_seconds",
				Help:    "Page script run duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
		),
		Callbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gbbridge_page_callbacks_total",
				Help: "Total number of host callbacks delivered to pages",
			},
			[]string{"callback", "defined"},
		),

		// WebSocket metrics
		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "gbbridge_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gbbridge_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),

		// System metrics
		Uptime: factory.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "gbbridge_uptime_seconds",
				Help: "Uptime in seconds",
			},
			func() float64 { return time.Since(start).Seconds() },
		),
	}

	return m
}

// Handler serves the collector's registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// StartTime returns when the collector was created.
func (m *Metrics) StartTime() time.Time {
	return m.startTime
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	// Update snapshot
	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.TotalDuration += duration.Seconds()
	m.snapshot.RequestCount++
	if status != "" && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordDispatch records one bridge dispatch. kind is navigate, submit or
// desktop; outcome is sent, suppressed or error.
func (m *Metrics) RecordDispatch(action, kind, outcome string) {
	m.Dispatches.WithLabelValues(action, kind, outcome).Inc()

	m.mu.Lock()
	m.snapshot.TotalDispatches++
	if outcome == "suppressed" {
		m.snapshot.Suppressed++
	}
	m.mu.Unlock()
}

// RecordDesktopRequest records a desktop fallback HTTP request
func (m *Metrics) RecordDesktopRequest(method, outcome string, duration time.Duration) {
	m.DesktopRequests.WithLabelValues(method, outcome).Inc()
	m.DesktopDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordScriptRun records a page script run
func (m *Metrics) RecordScriptRun(outcome string, duration time.Duration) {
	m.ScriptRuns.WithLabelValues(outcome).Inc()
	m.ScriptDuration.Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.ScriptRuns++
	m.mu.Unlock()
}

// RecordCallback records a host callback delivered to a page
func (m *Metrics) RecordCallback(name string, defined bool) {
	label := "false"
	if defined {
		label = "true"
	}
	m.Callbacks.WithLabelValues(name, label).Inc()
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
}

// Snapshot returns a copy of the current counters
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// AverageRequestDuration returns the mean HTTP request duration in seconds
func (m *Metrics) AverageRequestDuration() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.snapshot.RequestCount == 0 {
		return 0
	}
	return m.snapshot.TotalDuration / float64(m.snapshot.RequestCount)
}
