package bridge

import (
	"context"

	"go.uber.org/zap"
)

// Scheme actions understood by the native host.
const (
	ActionMaps          = "maps"
	ActionOpenApp       = "openapp"
	ActionGoToSection   = "gotosection"
	ActionNavigatePush  = "navigate.push"
	ActionNavigateModal = "navigate.modal"
	ActionNavigateBack  = "navigate.back"
	ActionRequest       = "request"
	ActionAuthenticate  = "authenticate"
	ActionShare         = "share"
	ActionGetMedia      = "getmedia"
	ActionGetLocation   = "getlocation"
	ActionSetPreference = "setpreference"
	ActionGetPreference = "getpreference"
)

// Authenticate defaults.
const (
	DefaultAuthServices = "all"
	DefaultAuthSkip     = "YES"
)

// MediaType selects what getmedia captures.
type MediaType string

const (
	MediaPhoto MediaType = "photo"
	MediaVideo MediaType = "video"
)

// MediaSource selects where getmedia captures from.
type MediaSource string

const (
	SourceAll     MediaSource = "all"
	SourceCamera  MediaSource = "camera"
	SourceLibrary MediaSource = "library"
)

// Mailto opens the mail composer.
func (d *Dispatcher) Mailto(to, subject, body string) error {
	return d.Navigate("mailto:"+to, NewParams("subject", subject, "body", body))
}

// Tel places a call.
func (d *Dispatcher) Tel(number string) error {
	return d.Navigate("tel:"+number, nil)
}

// SMS opens the message composer.
func (d *Dispatcher) SMS(number string) error {
	return d.Navigate("sms:"+number, nil)
}

// Maps opens the native maps application. Without params a bare q= is sent.
func (d *Dispatcher) Maps(params *Params) error {
	if params.Len() == 0 {
		params = NewParams("q", "")
	}
	return d.Navigate(SchemeURL(ActionMaps), params)
}

// OpenApp asks the host to open the application registered for scheme,
// handing it linkURL.
func (d *Dispatcher) OpenApp(scheme, linkURL string) error {
	return d.Navigate(SchemeURL(ActionOpenApp), NewParams("scheme", scheme, "url", linkURL))
}

// GoToSection switches the host to section id.
func (d *Dispatcher) GoToSection(id string) error {
	return d.Navigate(SchemeURL(ActionGoToSection), NewParams("id", id))
}

// NavigatePush pushes page with params as its post body.
func (d *Dispatcher) NavigatePush(page string, params *Params) error {
	return d.Submit(SchemeURL(ActionNavigatePush), NewParams("page", page), params)
}

// NavigateModal presents page modally with params as its post body.
func (d *Dispatcher) NavigateModal(page string, params *Params) error {
	return d.Submit(SchemeURL(ActionNavigateModal), NewParams("page", page), params)
}

// NavigateBack pops the current page.
func (d *Dispatcher) NavigateBack() error {
	return d.Navigate(SchemeURL(ActionNavigateBack), nil)
}

// FetchRequest is a resource fetch executed by the host, which answers with
// gbRequestDidSuccess(tag, body, extra). Cache is forwarded to the host
// verbatim.
type FetchRequest struct {
	URL    string
	Tag    string
	Cache  string
	Method Method
	Params *Params
}

// Request asks the host to fetch a resource. In desktop mode the request is
// made directly and the callbacks are invoked on completion.
func (d *Dispatcher) Request(ctx context.Context, fr FetchRequest) error {
	method := fr.Method
	if method == "" {
		method = MethodGet
	}

	if d.config.DesktopMode {
		return d.desktopRequest(ctx, method, fr)
	}

	query := NewParams(
		"url", fr.URL,
		"tag", fr.Tag,
		"cache", fr.Cache,
		"method", string(method),
	)
	if method.IsGet() {
		return d.Navigate(SchemeURL(ActionRequest), query)
	}
	return d.Dispatch(Request{Path: SchemeURL(ActionRequest), Query: query, Body: fr.Params, Method: method})
}

func (d *Dispatcher) desktopRequest(ctx context.Context, method Method, fr FetchRequest) error {
	if d.callbacks == nil {
		return ErrNoCallbacks
	}
	if fr.URL == "" {
		return ErrEmptyPath
	}
	transport := d.transport
	if transport == nil {
		transport = NewDesktopTransport(DefaultTransportConfig()).WithLogger(d.logger).WithMetrics(d.metrics)
		d.transport = transport
	}
	body := fr.Params.Clone()
	cb := d.callbacks

	d.record(ActionRequest, "desktop", "sent")
	d.executor.Async(func() func() {
		resp, err := transport.Do(ctx, method, fr.URL, body)
		return func() {
			switch {
			case err != nil:
				cb.RequestDidFail(fr.Tag, 0, err.Error())
			case resp.OK():
				cb.RequestDidSuccess(fr.Tag, resp.Body, "")
			default:
				cb.RequestDidFail(fr.Tag, resp.Status, resp.Body)
			}
		}
	})
	return nil
}

// Authenticate asks the host to sign the user in with a social network.
// Empty arguments take the defaults "all" and "YES".
func (d *Dispatcher) Authenticate(services, skip string) error {
	if services == "" {
		services = DefaultAuthServices
	}
	if skip == "" {
		skip = DefaultAuthSkip
	}
	return d.Navigate(SchemeURL(ActionAuthenticate), NewParams("services", services, "skip", skip))
}

// Share shares text and link.
func (d *Dispatcher) Share(text, link string) error {
	return d.Navigate(SchemeURL(ActionShare), NewParams("text", text, "link", link))
}

// GetMedia asks the host to capture a photo or video. Empty arguments take
// the defaults "photo" and "all".
func (d *Dispatcher) GetMedia(mediaType MediaType, source MediaSource) error {
	if mediaType == "" {
		mediaType = MediaPhoto
	}
	if source == "" {
		source = SourceAll
	}
	return d.Navigate(SchemeURL(ActionGetMedia), NewParams("type", string(mediaType), "source", string(source)))
}

// GetLocation asks the host for the current position. In desktop mode the
// Geolocator is read and the result delivered to the location callbacks.
func (d *Dispatcher) GetLocation(ctx context.Context) error {
	if !d.config.DesktopMode {
		return d.Navigate(SchemeURL(ActionGetLocation), nil)
	}
	if d.callbacks == nil {
		return ErrNoCallbacks
	}
	if d.geo == nil {
		return ErrNoGeolocator
	}
	geo, cb := d.geo, d.callbacks

	d.record(ActionGetLocation, "desktop", "sent")
	d.executor.Async(func() func() {
		pos, err := geo.CurrentPosition(ctx)
		if err != nil {
			reason := ReasonFor(err)
			d.logger.Debug("Geolocation failed", zap.String("reason", string(reason)), zap.Error(err))
			return func() { cb.DidFailGetLocation(reason) }
		}
		return func() { cb.DidSuccessGetLocation(pos.Latitude, pos.Longitude) }
	})
	return nil
}

// SetPreference stores a named string preference in the host.
func (d *Dispatcher) SetPreference(key, value string) error {
	return d.Navigate(SchemeURL(ActionSetPreference), NewParams("key", key, "value", value))
}

// GetPreference asks the host for a named preference. Desktop mode has no
// preference store: the callback gets an empty value right away and the
// navigation is still sent.
func (d *Dispatcher) GetPreference(key string) error {
	if d.config.DesktopMode {
		if d.callbacks == nil {
			return ErrNoCallbacks
		}
		d.record(ActionGetPreference, "desktop", "sent")
		d.callbacks.DidSuccessGetPreference(key, "")
	}
	return d.Navigate(SchemeURL(ActionGetPreference), NewParams("key", key))
}
