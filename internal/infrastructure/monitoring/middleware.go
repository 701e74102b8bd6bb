package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware records one HTTP observation per request, labelled by route
// template so /v1/runs/:id stays a single series.
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordHTTPRequest(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start),
			max(c.Request.ContentLength, 0),
			int64(max(c.Writer.Size(), 0)),
		)
	}
}

// Timer measures a page script run
type Timer struct {
	start   time.Time
	metrics *Metrics
}

// NewTimer starts a timer; metrics may be nil
func NewTimer(metrics *Metrics) *Timer {
	return &Timer{start: time.Now(), metrics: metrics}
}

// Stop records the run under outcome and returns its duration
func (t *Timer) Stop(outcome string) time.Duration {
	d := time.Since(t.start)
	if t.metrics != nil {
		t.metrics.RecordScriptRun(outcome, d)
	}
	return d
}
