package http

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/gbbridge/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/gbbridge/internal/runner"
	"github.com/GriffinCanCode/gbbridge/internal/sandbox"
)

const (
	// Version is reported by the root endpoint
	Version = "0.1.0"

	maxPageBytes = 1 << 20
	historySize  = 50
	runTimeout   = 30 * time.Second
)

// Handlers contains all HTTP handlers
type Handlers struct {
	runner  *runner.Runner
	metrics *monitoring.Metrics
	logger  *zap.Logger
	clients func() int

	mu      sync.RWMutex
	history []*runner.Record
}

// NewHandlers creates the handler set and starts recording r's runs
func NewHandlers(r *runner.Runner, metrics *monitoring.Metrics, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handlers{
		runner:  r,
		metrics: metrics,
		logger:  logger.Named("api"),
		clients: func() int { return 0 },
	}
	r.Subscribe(h.remember)
	return h
}

// WithClientCount reports stream clients in /health
func (h *Handlers) WithClientCount(fn func() int) *Handlers {
	if fn != nil {
		h.clients = fn
	}
	return h
}

func (h *Handlers) remember(rec *runner.Record) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.history = append(h.history, rec)
	if len(h.history) > historySize {
		h.history = h.history[len(h.history)-historySize:]
	}
}

// Root handles service info
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "gbbridge development host",
		"version": Version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	resp := gin.H{
		"status":         "healthy",
		"sandbox_pool":   h.runner.Stats(),
		"stream_clients": h.clients(),
		"upstreams":      h.runner.Upstreams(),
	}
	if h.metrics != nil {
		resp["uptime_seconds"] = time.Since(h.metrics.StartTime()).Seconds()
	}
	c.JSON(http.StatusOK, resp)
}

// Run executes a page and returns its record
func (h *Handlers) Run(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxPageBytes)

	var in runner.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run request: " + err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), runTimeout)
	defer cancel()

	rec, err := h.runner.Run(ctx, in)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, runner.ErrNoInput), errors.Is(err, runner.ErrAmbiguousInput):
			status = http.StatusBadRequest
		case errors.Is(err, sandbox.ErrTimeout), errors.Is(err, sandbox.ErrPoolClosed):
			status = http.StatusServiceUnavailable
		}
		h.logger.Warn("Run rejected", zap.Error(err), zap.Int("status", status))
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, rec)
}

// ListRuns lists recently completed runs, newest first
func (h *Handlers) ListRuns(c *gin.Context) {
	h.mu.RLock()
	runs := make([]*runner.Record, 0, len(h.history))
	for i := len(h.history) - 1; i >= 0; i-- {
		runs = append(runs, h.history[i])
	}
	h.mu.RUnlock()

	c.JSON(http.StatusOK, gin.H{
		"runs":  runs,
		"count": len(runs),
	})
}

// GetRun returns one recent run
func (h *Handlers) GetRun(c *gin.Context) {
	runID := c.Param("id")

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, rec := range h.history {
		if rec.ID.String() == runID {
			c.JSON(http.StatusOK, rec)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
}
