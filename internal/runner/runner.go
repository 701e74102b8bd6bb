// Package runner runs pages through the sandbox against a simulated host and
// turns each run into a Record for the development server and the CLI.
package runner

import (
	"context"
	"errors"
	"fmt"
	"html"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/gbbridge/internal/bridge"
	"github.com/GriffinCanCode/gbbridge/internal/host"
	"github.com/GriffinCanCode/gbbridge/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/gbbridge/internal/page"
	"github.com/GriffinCanCode/gbbridge/internal/sandbox"
	"github.com/GriffinCanCode/gbbridge/internal/shared/id"
)

var (
	ErrNoInput        = errors.New("runner: html or script is required")
	ErrAmbiguousInput = errors.New("runner: html and script are mutually exclusive")
)

// Input is one page to run. Nil overrides fall back to the runner defaults.
type Input struct {
	Name        string            `json:"name,omitempty"`
	HTML        string            `json:"html,omitempty"`
	Script      string            `json:"script,omitempty"`
	DebugMode   *bridge.DebugMode `json:"debug_mode,omitempty"`
	DesktopMode *bool             `json:"desktop_mode,omitempty"`
	Fixtures    *host.Fixtures    `json:"fixtures,omitempty"`
}

// DispatchRecord is a dispatch with its ID
type DispatchRecord struct {
	ID id.DispatchID `json:"id"`
	sandbox.Dispatch
}

// Record is the outcome of one run
type Record struct {
	ID         id.RunID                `json:"id"`
	Name       string                  `json:"name,omitempty"`
	Title      string                  `json:"title,omitempty"`
	Mode       bridge.Config           `json:"mode"`
	Dispatches []DispatchRecord        `json:"dispatches"`
	Alerts     []string                `json:"alerts"` // sanitized for display
	Console    []sandbox.LogEntry      `json:"console"`
	Callbacks  []sandbox.CallbackEntry `json:"callbacks"`
	Handled    []host.Handled          `json:"handled,omitempty"`
	External   []string                `json:"external_scripts,omitempty"`
	Location   string                  `json:"location,omitempty"`
	Value      interface{}             `json:"value,omitempty"`
	DurationMS float64                 `json:"duration_ms"`
	StartedAt  time.Time               `json:"started_at"`
	Error      string                  `json:"error,omitempty"`
}

// Failed reports whether the page run ended with an error
func (r *Record) Failed() bool {
	return r.Error != ""
}

// Options configure a Runner
type Options struct {
	Bridge    bridge.Config
	Fixtures  host.Fixtures
	Simulate  bool // answer scheme dispatches with a host simulator
	Transport *bridge.DesktopTransport
	// Guard breaks passthrough requests per upstream host; nil uses defaults
	Guard  *resilience.Set
	Logger *zap.Logger
}

// Runner executes pages on a sandbox pool
type Runner struct {
	pool      *sandbox.Pool
	opts      Options
	logger    *zap.Logger
	sanitizer *bluemonday.Policy

	mu          sync.RWMutex
	subscribers []func(*Record)
}

// New creates a runner on pool
func New(pool *sandbox.Pool, opts Options) *Runner {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("runner")
	if opts.Guard == nil {
		settings := resilience.DefaultSettings()
		settings.OnStateChange = func(key string, from, to resilience.State) {
			logger.Info("Upstream breaker state changed",
				zap.String("upstream", key),
				zap.Stringer("from", from),
				zap.Stringer("to", to),
			)
		}
		opts.Guard = resilience.NewSet(settings)
	}
	return &Runner{
		pool:      pool,
		opts:      opts,
		logger:    logger,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// Subscribe registers fn to receive every completed record
func (r *Runner) Subscribe(fn func(*Record)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscribers = append(r.subscribers, fn)
}

// Run executes one page. A script error is reported in the record; the
// returned error covers invalid input and an unavailable sandbox.
func (r *Runner) Run(ctx context.Context, in Input) (*Record, error) {
	switch {
	case in.HTML == "" && in.Script == "":
		return nil, ErrNoInput
	case in.HTML != "" && in.Script != "":
		return nil, ErrAmbiguousInput
	}

	rec := &Record{
		ID:        id.NewRunID(),
		Name:      in.Name,
		StartedAt: time.Now(),
	}

	script, dom := in.Script, sandbox.NewDOM()
	if in.HTML != "" {
		p, err := page.ParseString(in.HTML)
		if err != nil {
			return nil, err
		}
		script, dom = p.Script(), p.DOM()
		rec.Title = p.Title
		rec.External = p.External()
	}

	mode := r.opts.Bridge
	if in.DebugMode != nil {
		mode.DebugMode = *in.DebugMode
	}
	if in.DesktopMode != nil {
		mode.DesktopMode = *in.DesktopMode
	}
	rec.Mode = mode

	opts := sandbox.RunOptions{Bridge: &mode}
	var sim *host.Simulator
	if r.opts.Simulate {
		fixtures := r.opts.Fixtures
		if in.Fixtures != nil {
			fixtures = *in.Fixtures
		}
		sim = host.NewSimulator(fixtures).
			WithTransport(r.opts.Transport).
			WithGuard(r.opts.Guard).
			WithLogger(r.logger)
		opts.Host = sim
		opts.Geolocator = sim
	}

	result, err := r.pool.Run(ctx, script, dom, opts)
	if result == nil {
		return nil, fmt.Errorf("run %s: %w", rec.ID, err)
	}
	r.fill(rec, result)
	if sim != nil {
		rec.Handled = sim.Handled()
	}

	r.logger.Info("Page run completed",
		zap.String("id", rec.ID.String()),
		zap.String("name", rec.Name),
		zap.Int("dispatches", len(rec.Dispatches)),
		zap.Int("callbacks", len(rec.Callbacks)),
		zap.Float64("duration_ms", rec.DurationMS),
		zap.String("error", rec.Error),
	)
	r.publish(rec)
	return rec, nil
}

// stripMarkup drops tags from page-controlled console text. Entities the
// policy escapes are decoded again since records are served as JSON.
func (r *Runner) stripMarkup(s string) string {
	return html.UnescapeString(r.sanitizer.Sanitize(s))
}

func (r *Runner) fill(rec *Record, result *sandbox.Result) {
	rec.Dispatches = make([]DispatchRecord, 0, len(result.Dispatches))
	rec.Alerts = []string{}
	for _, d := range result.Dispatches {
		rec.Dispatches = append(rec.Dispatches, DispatchRecord{ID: id.NewDispatchID(), Dispatch: d})
		if d.Kind == sandbox.KindAlert {
			rec.Alerts = append(rec.Alerts, d.Text)
		}
	}

	rec.Console = make([]sandbox.LogEntry, len(result.Console))
	for i, entry := range result.Console {
		entry.Message = r.stripMarkup(entry.Message)
		rec.Console[i] = entry
	}

	rec.Callbacks = result.Callbacks
	rec.Location = result.Location
	rec.Value = result.Value
	rec.DurationMS = float64(result.Duration) / float64(time.Millisecond)
	if result.Error != nil {
		rec.Error = result.Error.Error()
	}
}

func (r *Runner) publish(rec *Record) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, fn := range r.subscribers {
		fn(rec)
	}
}

// Stats returns the pool occupancy
func (r *Runner) Stats() sandbox.PoolStats {
	return r.pool.Stats()
}

// Upstreams reports the breaker state of every passthrough upstream seen
func (r *Runner) Upstreams() map[string]string {
	states := r.opts.Guard.States()
	out := make(map[string]string, len(states))
	for k, v := range states {
		out[k] = v.String()
	}
	return out
}
