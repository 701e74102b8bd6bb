package sandbox

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/gbbridge/internal/bridge"
	"github.com/GriffinCanCode/gbbridge/internal/infrastructure/monitoring"
)

var (
	ErrClosed     = errors.New("sandbox runtime is closed")
	ErrRunTimeout = errors.New("page run timed out")
)

// Runtime wraps a goja VM hosting one page at a time
type Runtime struct {
	vm        *goja.Runtime
	config    Config
	transport *bridge.DesktopTransport
	logger    *zap.Logger
	mu        sync.Mutex
}

// New creates a new sandboxed runtime
func New(config Config) (*Runtime, error) {
	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Runtime{
		vm:     goja.New(),
		config: config,
		logger: logger.Named("sandbox"),
	}
	r.transport = bridge.NewDesktopTransport(config.Transport).
		WithLogger(logger).
		WithMetrics(config.Metrics)

	if err := r.setupGlobals(); err != nil {
		return nil, err
	}

	return r, nil
}

// Execute runs a page script, then keeps delivering host callbacks, desktop
// completions and timers until none are pending or the timeout expires.
func (r *Runtime) Execute(ctx context.Context, script string, dom *DOM) (*Result, error) {
	return r.Run(ctx, script, dom, RunOptions{})
}

// Run is Execute with per-run overrides of the bridge switches, host and
// geolocator.
func (r *Runtime) Run(ctx context.Context, script string, dom *DOM, opts RunOptions) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.vm == nil {
		return nil, ErrClosed
	}

	timer := monitoring.NewTimer(r.config.Metrics)
	result := &Result{
		Console:    []LogEntry{},
		Dispatches: []Dispatch{},
		Callbacks:  []CallbackEntry{},
	}

	runCtx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	if dom == nil {
		dom = NewDOM()
	}

	l := newLoop()
	defer l.close()

	p, err := r.newPage(runCtx, l, dom, result, r.resolve(opts))
	if err != nil {
		return nil, fmt.Errorf("failed to bind page: %w", err)
	}

	// Setup interrupt handler
	stop := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		select {
		case <-runCtx.Done():
			if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
				r.vm.Interrupt("execution timeout exceeded")
			} else {
				r.vm.Interrupt("context cancelled")
			}
		case <-stop:
		}
	}()

	val, err := r.vm.RunString(script)
	if err == nil {
		if drainErr := l.drain(runCtx); drainErr != nil {
			err = fmt.Errorf("%w: %d operations pending: %v", ErrRunTimeout, l.pending, drainErr)
		}
	}

	close(stop)
	<-stopped
	r.vm.ClearInterrupt()

	result.Location = p.location
	result.DOMChanges = dom.GetChanges()
	result.Duration = timer.Stop(outcome(err))

	if err != nil {
		result.Error = err
		r.logger.Debug("Page run failed", zap.Error(err), zap.Int("dispatches", len(result.Dispatches)))
		return result, err
	}

	result.Value = r.exportValue(val)
	return result, nil
}

// resolve fills unset options from the runtime config
func (r *Runtime) resolve(opts RunOptions) RunOptions {
	if opts.Bridge == nil {
		b := r.config.Bridge
		opts.Bridge = &b
	}
	if opts.Host == nil {
		opts.Host = r.config.Host
	}
	if opts.Geolocator == nil {
		opts.Geolocator = r.config.Geolocator
	}
	return opts
}

func outcome(err error) string {
	var interrupted *goja.InterruptedError
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrRunTimeout), errors.As(err, &interrupted):
		return "timeout"
	default:
		return "error"
	}
}

// setupGlobals configures global objects and security
func (r *Runtime) setupGlobals() error {
	if r.config.MaxCallStackSize > 0 {
		r.vm.SetMaxCallStackSize(r.config.MaxCallStackSize)
	}

	// Remove dangerous globals
	for _, name := range []string{"require", "process", "module", "exports"} {
		if err := r.vm.Set(name, goja.Undefined()); err != nil {
			return err
		}
	}
	return nil
}

// injectDOM injects DOM proxy into runtime
func (r *Runtime) injectDOM(dom *DOM) error {
	document := r.vm.NewObject()

	document.Set("querySelector", r.makeDOMFunc(dom, ""))
	document.Set("getElementById", r.makeDOMFunc(dom, "#"))
	document.Set("body", r.createElementProxy(dom.Body()))

	return r.vm.Set("document", document)
}

// makeDOMFunc creates a DOM proxy function. prefix is prepended to the
// argument, so getElementById("x") queries "#x".
func (r *Runtime) makeDOMFunc(dom *DOM, prefix string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return goja.Null()
		}

		elements := dom.Query(prefix + call.Arguments[0].String())
		if len(elements) == 0 {
			return goja.Null()
		}

		return r.vm.ToValue(r.createElementProxy(elements[0]))
	}
}

// createElementProxy creates a proxy for DOM element
func (r *Runtime) createElementProxy(elem *Element) map[string]interface{} {
	return map[string]interface{}{
		"tagName":     elem.TagName,
		"id":          elem.ID,
		"className":   elem.ClassName,
		"textContent": elem.TextContent,
		"getAttribute": func(name string) string {
			return elem.GetAttribute(name)
		},
		"setAttribute": func(name, value string) {
			elem.SetAttribute(name, value)
		},
		"childElementCount": func() int {
			return len(elem.Children)
		},
	}
}

// exportValue converts goja value to Go value
func (r *Runtime) exportValue(val goja.Value) interface{} {
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return nil
	}
	return val.Export()
}

// Reset replaces the VM, dropping everything the previous page defined
func (r *Runtime) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.vm == nil {
		return ErrClosed
	}
	r.vm = goja.New()
	return r.setupGlobals()
}

// Close releases resources
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.vm = nil
	return nil
}
