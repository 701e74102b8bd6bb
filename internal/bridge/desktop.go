package bridge

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/gbbridge/internal/infrastructure/monitoring"
)

// TransportConfig configures the desktop fallback HTTP client.
type TransportConfig struct {
	Timeout   time.Duration
	UserAgent string
}

// DefaultTransportConfig returns the development defaults.
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		Timeout:   30 * time.Second,
		UserAgent: "gbbridge-desktop/1.0",
	}
}

// Response is the outcome of a desktop fallback request.
type Response struct {
	Status int
	Body   string
}

// OK reports whether the page should be told the request succeeded: status
// 200, or 0 as returned for local origins.
func (r *Response) OK() bool {
	return r.Status == http.StatusOK || r.Status == 0
}

// DesktopTransport performs the real HTTP request that replaces a
// goodbarber://request navigation when no native host is present. It never
// retries.
type DesktopTransport struct {
	client  *resty.Client
	logger  *zap.Logger
	metrics *monitoring.Metrics
}

// NewDesktopTransport creates a transport from cfg.
func NewDesktopTransport(cfg TransportConfig) *DesktopTransport {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(0)
	if cfg.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.UserAgent)
	}
	return &DesktopTransport{
		client: client,
		logger: zap.NewNop(),
	}
}

// WithLogger sets the logger.
func (t *DesktopTransport) WithLogger(logger *zap.Logger) *DesktopTransport {
	if logger != nil {
		t.logger = logger.Named("desktop")
	}
	return t
}

// WithMetrics enables metrics collection.
func (t *DesktopTransport) WithMetrics(metrics *monitoring.Metrics) *DesktopTransport {
	t.metrics = metrics
	return t
}

// Client exposes the underlying resty client.
func (t *DesktopTransport) Client() *resty.Client {
	return t.client
}

// Do performs method on url. For any method but GET, body is sent
// form-encoded. A non-nil error means no HTTP response was received.
func (t *DesktopTransport) Do(ctx context.Context, method Method, url string, body *Params) (*Response, error) {
	start := time.Now()
	verb := strings.ToUpper(string(method))
	if verb == "" {
		verb = string(MethodGet)
	}
	req := t.client.R().SetContext(ctx)
	if verb != string(MethodGet) && body.Len() > 0 {
		req.SetFormData(body.Map())
	}
	resp, err := req.Execute(verb, url)

	outcome := "success"
	defer func() {
		if t.metrics != nil {
			t.metrics.RecordDesktopRequest(verb, outcome, time.Since(start))
		}
	}()

	if err != nil {
		outcome = "error"
		t.logger.Warn("Desktop request failed",
			zap.String("method", string(method)),
			zap.String("url", url),
			zap.Error(err),
		)
		return nil, fmt.Errorf("desktop %s %s: %w", method, url, err)
	}

	out := &Response{Status: resp.StatusCode(), Body: string(resp.Body())}
	if !out.OK() {
		outcome = "failure"
	}
	t.logger.Debug("Desktop request completed",
		zap.String("method", string(method)),
		zap.String("url", url),
		zap.Int("status", out.Status),
		zap.Duration("duration", time.Since(start)),
	)
	return out, nil
}
