package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/gbbridge/internal/infrastructure/monitoring"
)

// MetricsSummary provides high-level metrics
type MetricsSummary struct {
	Timestamp        time.Time `json:"timestamp"`
	TotalRequests    int64     `json:"total_requests"`
	AverageLatencyMs float64   `json:"average_latency_ms"`
	ErrorRate        float64   `json:"error_rate"`
	Dispatches       int64     `json:"dispatches"`
	Suppressed       int64     `json:"suppressed"`
	ScriptRuns       int64     `json:"script_runs"`
	UptimeSeconds    float64   `json:"uptime_seconds"`
}

// Summarize derives a summary from the collector's counters
func Summarize(m *monitoring.Metrics) MetricsSummary {
	snap := m.Snapshot()
	summary := MetricsSummary{
		Timestamp:        time.Now(),
		TotalRequests:    snap.TotalRequests,
		AverageLatencyMs: m.AverageRequestDuration() * 1000,
		Dispatches:       snap.TotalDispatches,
		Suppressed:       snap.Suppressed,
		ScriptRuns:       snap.ScriptRuns,
		UptimeSeconds:    time.Since(m.StartTime()).Seconds(),
	}
	if snap.TotalRequests > 0 {
		summary.ErrorRate = float64(snap.TotalErrors) / float64(snap.TotalRequests)
	}
	return summary
}

// Metrics serves the Prometheus exposition
func (h *Handlers) Metrics(c *gin.Context) {
	if h.metrics == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "metrics disabled"})
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// MetricsJSON serves the summary as JSON
func (h *Handlers) MetricsJSON(c *gin.Context) {
	if h.metrics == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "metrics disabled"})
		return
	}
	c.JSON(http.StatusOK, Summarize(h.metrics))
}
