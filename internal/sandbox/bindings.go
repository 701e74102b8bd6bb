package sandbox

import (
	"time"

	"github.com/dop251/goja"

	"github.com/GriffinCanCode/gbbridge/internal/bridge"
)

// bind installs the page globals: window, location, alert, document,
// console, timers and the gb* bridge API.
func (p *page) bind() error {
	vm := p.vm
	global := vm.GlobalObject()

	if err := global.Set("window", global); err != nil {
		return err
	}
	if err := global.Set("self", global); err != nil {
		return err
	}

	location := vm.NewObject()
	_ = location.Set("href", "")
	_ = location.Set("replace", p.jsFunc(func(call goja.FunctionCall) error {
		return p.Replace(argString(call, 0))
	}))
	_ = location.Set("assign", location.Get("replace"))
	p.locationObj = location
	if err := global.Set("location", location); err != nil {
		return err
	}

	if err := global.Set("alert", func(call goja.FunctionCall) goja.Value {
		p.Alert(argString(call, 0))
		return goja.Undefined()
	}); err != nil {
		return err
	}

	if err := p.rt.injectDOM(p.dom); err != nil {
		return err
	}

	if p.rt.config.EnableConsole {
		console := vm.NewObject()
		for _, level := range []string{"log", "warn", "error", "info", "debug"} {
			_ = console.Set(level, p.makeConsoleFunc(level))
		}
		if err := global.Set("console", console); err != nil {
			return err
		}
	}

	p.bindTimers()
	return p.bindBridge()
}

func (p *page) makeConsoleFunc(level string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		var msg string
		for i, arg := range call.Arguments {
			if i > 0 {
				msg += " "
			}
			msg += arg.String()
		}
		p.console(level, msg)
		return goja.Undefined()
	}
}

// bindTimers provides setTimeout/clearTimeout on the page loop. setInterval
// stays a no-op: a repeating timer would keep the run pending forever.
func (p *page) bindTimers() {
	vm := p.vm
	_ = vm.Set("setTimeout", func(call goja.FunctionCall) goja.Value {
		fn, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			return goja.Undefined()
		}
		delay := time.Duration(call.Argument(1).ToInteger()) * time.Millisecond
		args := append([]goja.Value(nil), call.Arguments[min(2, len(call.Arguments)):]...)

		p.nextTimer++
		id := p.nextTimer
		p.loop.after(p.ctx, delay, func() {
			if p.cleared[id] {
				delete(p.cleared, id)
				return
			}
			if _, err := fn(goja.Undefined(), args...); err != nil {
				p.console("error", err.Error())
			}
		})
		return vm.ToValue(id)
	})
	_ = vm.Set("clearTimeout", func(call goja.FunctionCall) goja.Value {
		p.cleared[call.Argument(0).ToInteger()] = true
		return goja.Undefined()
	})
	_ = vm.Set("setInterval", func(call goja.FunctionCall) goja.Value {
		return goja.Undefined()
	})
	_ = vm.Set("clearInterval", func(call goja.FunctionCall) goja.Value {
		return goja.Undefined()
	})
}

// bindBridge installs the gb* functions page scripts call.
func (p *page) bindBridge() error {
	d := p.dispatcher
	funcs := map[string]func(goja.FunctionCall) error{
		"gbMailto": func(call goja.FunctionCall) error {
			return d.Mailto(argString(call, 0), argString(call, 1), argString(call, 2))
		},
		"gbTel": func(call goja.FunctionCall) error {
			return d.Tel(argString(call, 0))
		},
		"gbSms": func(call goja.FunctionCall) error {
			return d.SMS(argString(call, 0))
		},
		"gbMaps": func(call goja.FunctionCall) error {
			return d.Maps(p.argParams(call, 0))
		},
		"gbOpenApp": func(call goja.FunctionCall) error {
			return d.OpenApp(argString(call, 0), argString(call, 1))
		},
		"gbGoToSection": func(call goja.FunctionCall) error {
			return d.GoToSection(argString(call, 0))
		},
		"gbNavigatePush": func(call goja.FunctionCall) error {
			return d.NavigatePush(argString(call, 0), p.argParams(call, 1))
		},
		"gbNavigateModal": func(call goja.FunctionCall) error {
			return d.NavigateModal(argString(call, 0), p.argParams(call, 1))
		},
		"gbNavigateBack": func(call goja.FunctionCall) error {
			return d.NavigateBack()
		},
		"gbRequest": func(call goja.FunctionCall) error {
			return d.Request(p.ctx, bridge.FetchRequest{
				URL:    argString(call, 0),
				Tag:    argString(call, 1),
				Cache:  argString(call, 2),
				Method: bridge.ParseMethod(argString(call, 3)),
				Params: p.argParams(call, 4),
			})
		},
		"gbAuthenticate": func(call goja.FunctionCall) error {
			return d.Authenticate(argString(call, 0), argString(call, 1))
		},
		"gbShare": func(call goja.FunctionCall) error {
			return d.Share(argString(call, 0), argString(call, 1))
		},
		"gbGetMedia": func(call goja.FunctionCall) error {
			return d.GetMedia(bridge.MediaType(argString(call, 0)), bridge.MediaSource(argString(call, 1)))
		},
		"gbGetLocation": func(call goja.FunctionCall) error {
			return d.GetLocation(p.ctx)
		},
		"gbSetPreference": func(call goja.FunctionCall) error {
			return d.SetPreference(argString(call, 0), argString(call, 1))
		},
		"gbGetPreference": func(call goja.FunctionCall) error {
			return d.GetPreference(argString(call, 0))
		},
	}

	for name, impl := range funcs {
		if err := p.vm.Set(name, p.jsFunc(impl)); err != nil {
			return err
		}
	}
	return nil
}

// jsFunc adapts impl to a goja function that throws impl's error.
func (p *page) jsFunc(impl func(goja.FunctionCall) error) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if err := impl(call); err != nil {
			panic(p.vm.NewGoError(err))
		}
		return goja.Undefined()
	}
}

// argString returns argument i as a string; undefined and null become "".
func argString(call goja.FunctionCall, i int) string {
	v := call.Argument(i)
	if goja.IsUndefined(v) || goja.IsNull(v) {
		return ""
	}
	return v.String()
}

// argParams converts a plain object argument to Params, keeping property
// order and omitting undefined and null values.
func (p *page) argParams(call goja.FunctionCall, i int) *bridge.Params {
	v := call.Argument(i)
	if goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	obj := v.ToObject(p.vm)
	params := bridge.NewParams()
	for _, key := range obj.Keys() {
		val := obj.Get(key)
		if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
			continue
		}
		params.Set(key, val.String())
	}
	return params
}
