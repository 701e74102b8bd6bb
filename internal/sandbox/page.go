package sandbox

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/gbbridge/internal/bridge"
)

// page is the state of one script run: the document, the location, the
// bridge dispatcher and everything recorded for the Result. It is both the
// dispatcher's Navigator and its Callbacks. All methods run on the loop
// goroutine.
type page struct {
	rt         *Runtime
	vm         *goja.Runtime
	ctx        context.Context
	loop       *loop
	dom        *DOM
	result     *Result
	dispatcher *bridge.Dispatcher
	host       Host
	logger     *zap.Logger

	location    string
	locationObj *goja.Object

	nextTimer int64
	cleared   map[int64]bool
}

var (
	_ bridge.Navigator = (*page)(nil)
	_ bridge.Callbacks = (*page)(nil)
)

func (r *Runtime) newPage(ctx context.Context, l *loop, dom *DOM, result *Result, opts RunOptions) (*page, error) {
	p := &page{
		rt:      r,
		vm:      r.vm,
		ctx:     ctx,
		loop:    l,
		dom:     dom,
		result:  result,
		host:    opts.Host,
		logger:  r.logger,
		cleared: make(map[int64]bool),
	}

	geo := opts.Geolocator
	if geo == nil {
		geo = unavailableGeolocator
	}
	d, err := bridge.New(*opts.Bridge, p)
	if err != nil {
		return nil, err
	}
	p.dispatcher = d.
		WithCallbacks(p).
		WithExecutor(l).
		WithTransport(r.transport).
		WithGeolocator(geo).
		WithLogger(r.logger).
		WithMetrics(r.config.Metrics)

	if err := p.bind(); err != nil {
		return nil, err
	}
	return p, nil
}

var unavailableGeolocator = bridge.GeolocatorFunc(func(context.Context) (bridge.Position, error) {
	return bridge.Position{}, &bridge.GeolocationError{
		Code:    bridge.CodePositionUnavailable,
		Message: "no position source configured",
	}
})

// Navigator

func (p *page) Replace(url string) error {
	p.location = url
	if p.locationObj != nil {
		_ = p.locationObj.Set("href", url)
	}
	p.record(Dispatch{Kind: KindNavigate, URL: url})
	p.intercept(url, nil)
	return nil
}

func (p *page) Alert(message string) {
	p.record(Dispatch{Kind: KindAlert, Text: message})
}

// Submit appends the form to the body, submits it and detaches it again, so
// a form element is never reused.
func (p *page) Submit(form *bridge.Form) error {
	el := formElement(form)
	body := p.dom.Body()
	body.AddElement(el)
	p.dom.RecordChange(DOMChange{Type: "append_child", Selector: "body", Property: "form", Value: form.Action})

	p.location = form.Action
	p.record(Dispatch{Kind: KindSubmit, URL: form.Action, Form: form})
	p.intercept(form.Action, form)

	el.Remove()
	p.dom.RecordChange(DOMChange{Type: "remove_child", Selector: "body", Property: "form", Value: form.Action})
	return nil
}

func (p *page) record(d Dispatch) {
	d.Time = time.Now()
	p.result.Dispatches = append(p.result.Dispatches, d)
}

// intercept hands scheme dispatches to the host, whose reply is delivered on
// the loop like any other completion.
func (p *page) intercept(url string, form *bridge.Form) {
	host := p.host
	if host == nil || !strings.HasPrefix(url, bridge.Scheme+"://") {
		return
	}
	ctx := p.ctx
	p.loop.Async(func() func() {
		reply, err := host.Handle(ctx, url, form)
		if err != nil {
			p.logger.Debug("Host did not handle dispatch", zap.String("url", url), zap.Error(err))
			return nil
		}
		if reply == nil {
			return nil
		}
		return func() { reply(p) }
	})
}

// Callbacks

func (p *page) RequestDidSuccess(tag, body, extra string) {
	p.invoke("gbRequestDidSuccess", tag, body, extra)
}

func (p *page) RequestDidFail(tag string, status int, message string) {
	p.invoke("gbRequestDidFail", tag, status, message)
}

func (p *page) DidSuccessGetLocation(latitude, longitude float64) {
	p.invoke("gbDidSuccessGetLocation", latitude, longitude)
}

func (p *page) DidFailGetLocation(reason bridge.GeolocationReason) {
	p.invoke("gbDidFailGetLocation", string(reason))
}

func (p *page) DidSuccessGetPreference(key, value string) {
	p.invoke("gbDidSuccessGetPreference", key, value)
}

// invoke calls the page-defined global name. A missing function is recorded
// and skipped.
func (p *page) invoke(name string, args ...interface{}) {
	entry := CallbackEntry{Name: name, Args: args}
	fn, ok := goja.AssertFunction(p.vm.Get(name))
	entry.Defined = ok

	if ok {
		values := make([]goja.Value, len(args))
		for i, arg := range args {
			values[i] = p.vm.ToValue(arg)
		}
		if _, err := fn(goja.Undefined(), values...); err != nil {
			entry.Error = err.Error()
			p.console("error", fmt.Sprintf("%s: %v", name, err))
		}
	} else {
		p.logger.Debug("Page callback not defined", zap.String("callback", name))
	}

	p.result.Callbacks = append(p.result.Callbacks, entry)
	if m := p.rt.config.Metrics; m != nil {
		m.RecordCallback(name, ok)
	}
}

func (p *page) console(level, msg string) {
	p.result.Console = append(p.result.Console, LogEntry{
		Level:   level,
		Message: msg,
		Time:    time.Now(),
	})
}

func formElement(form *bridge.Form) *Element {
	el := NewElement("form", map[string]string{"action": form.Action, "method": form.Method})
	for _, field := range form.Fields {
		el.AddElement(NewElement("input", map[string]string{
			"type":  "hidden",
			"name":  field.Name,
			"value": field.Value,
		}))
	}
	return el
}
