package bridge

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/gbbridge/internal/infrastructure/monitoring"
)

// Config holds the two dispatch switches. It is fixed for the lifetime of a
// Dispatcher.
type Config struct {
	DebugMode   DebugMode `json:"debug_mode"`
	DesktopMode bool      `json:"desktop_mode"`
}

// Dispatcher turns bridge calls into navigations, form submissions or, in
// desktop mode, real HTTP requests. A Dispatcher belongs to one page and is
// not safe for concurrent use; asynchronous completions are delivered through
// its Executor.
type Dispatcher struct {
	config    Config
	nav       Navigator
	callbacks Callbacks
	transport *DesktopTransport
	geo       Geolocator
	executor  Executor
	logger    *zap.Logger
	metrics   *monitoring.Metrics
}

// New creates a Dispatcher writing to nav.
func New(cfg Config, nav Navigator) (*Dispatcher, error) {
	if nav == nil {
		return nil, ErrNoNavigator
	}
	return &Dispatcher{
		config:   cfg,
		nav:      nav,
		executor: goroutineExecutor{},
		logger:   zap.NewNop(),
	}, nil
}

// WithCallbacks sets the page callbacks used by the desktop fallbacks.
func (d *Dispatcher) WithCallbacks(cb Callbacks) *Dispatcher {
	d.callbacks = cb
	return d
}

// WithTransport sets the desktop HTTP transport.
func (d *Dispatcher) WithTransport(t *DesktopTransport) *Dispatcher {
	d.transport = t
	return d
}

// WithGeolocator sets the desktop position source.
func (d *Dispatcher) WithGeolocator(g Geolocator) *Dispatcher {
	d.geo = g
	return d
}

// WithExecutor sets where asynchronous work runs and completes.
func (d *Dispatcher) WithExecutor(e Executor) *Dispatcher {
	if e != nil {
		d.executor = e
	}
	return d
}

// WithLogger sets the logger.
func (d *Dispatcher) WithLogger(logger *zap.Logger) *Dispatcher {
	if logger != nil {
		d.logger = logger.Named("dispatcher")
	}
	return d
}

// WithMetrics enables metrics collection.
func (d *Dispatcher) WithMetrics(metrics *monitoring.Metrics) *Dispatcher {
	d.metrics = metrics
	return d
}

// Config returns the dispatch switches.
func (d *Dispatcher) Config() Config {
	return d.config
}

// Navigate replaces the current location with path[?query].
func (d *Dispatcher) Navigate(path string, query *Params) error {
	return d.Dispatch(Request{Path: path, Query: query, Method: MethodGet})
}

// Submit posts body to path[?query] through a synthesized hidden form.
func (d *Dispatcher) Submit(path string, query, body *Params) error {
	return d.Dispatch(Request{Path: path, Query: query, Body: body, Method: MethodPost})
}

// Dispatch sends req through the navigator, honoring the debug mode on both
// the navigation and the form path.
func (d *Dispatcher) Dispatch(req Request) error {
	if req.Path == "" {
		return ErrEmptyPath
	}
	if req.Method == "" {
		req.Method = MethodGet
	}

	kind := "navigate"
	if !req.Method.IsGet() {
		kind = "submit"
	}
	action := req.Action()
	destination := req.URL()

	if d.config.DebugMode.Alerts() {
		d.nav.Alert(alertText(req))
	}
	if d.config.DebugMode.Suppresses() {
		d.logger.Debug("Dispatch suppressed",
			zap.String("action", action),
			zap.String("url", destination),
		)
		d.record(action, kind, "suppressed")
		return nil
	}

	var err error
	if req.Method.IsGet() {
		err = d.nav.Replace(destination)
	} else {
		err = d.nav.Submit(NewForm(req))
	}
	if err != nil {
		d.record(action, kind, "error")
		return fmt.Errorf("dispatch %s: %w", action, err)
	}

	d.logger.Debug("Dispatched",
		zap.String("kind", kind),
		zap.String("action", action),
		zap.String("url", destination),
		zap.Int("body_fields", req.Body.Len()),
	)
	d.record(action, kind, "sent")
	return nil
}

func (d *Dispatcher) record(action, kind, outcome string) {
	if d.metrics != nil {
		d.metrics.RecordDispatch(action, kind, outcome)
	}
}

// alertText is the string shown in debug mode: the destination, followed by
// the encoded body for form dispatches.
func alertText(req Request) string {
	if req.Method.IsGet() || req.Body.Len() == 0 {
		return req.URL()
	}
	return req.URL() + "\n" + req.Body.Encode()
}

type goroutineExecutor struct{}

func (goroutineExecutor) Async(work func() func()) {
	go func() {
		if done := work(); done != nil {
			done()
		}
	}()
}
