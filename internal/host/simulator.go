package host

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/gbbridge/internal/bridge"
	"github.com/GriffinCanCode/gbbridge/internal/infrastructure/resilience"
)

// Handled is one dispatch the simulator received
type Handled struct {
	Action Action `json:"action"`
	URL    string `json:"url"`
	Method string `json:"method"`
}

// Simulator answers scheme dispatches from fixtures. It is safe for
// concurrent use; one Simulator may serve many page runs.
type Simulator struct {
	fixtures  Fixtures
	transport *bridge.DesktopTransport
	guard     *resilience.Set
	logger    *zap.Logger

	mu          sync.Mutex
	preferences map[string]string
	handled     []Handled
}

// NewSimulator creates a simulator seeded with fixtures
func NewSimulator(fixtures Fixtures) *Simulator {
	prefs := make(map[string]string, len(fixtures.Preferences))
	for k, v := range fixtures.Preferences {
		prefs[k] = v
	}
	return &Simulator{
		fixtures:    fixtures,
		logger:      zap.NewNop(),
		preferences: prefs,
	}
}

// WithTransport enables passthrough of unmatched request actions
func (s *Simulator) WithTransport(t *bridge.DesktopTransport) *Simulator {
	s.transport = t
	return s
}

// WithGuard routes passthrough requests through per-upstream breakers.
// The set may be shared by simulators so failures are remembered across runs.
func (s *Simulator) WithGuard(guard *resilience.Set) *Simulator {
	s.guard = guard
	return s
}

// WithLogger sets the logger
func (s *Simulator) WithLogger(logger *zap.Logger) *Simulator {
	if logger != nil {
		s.logger = logger.Named("host")
	}
	return s
}

// Handle decodes rawURL and returns the callback reply the native host would
// send, or nil for fire-and-forget actions.
func (s *Simulator) Handle(ctx context.Context, rawURL string, form *bridge.Form) (func(bridge.Callbacks), error) {
	action, err := ParseAction(rawURL, form)
	if err != nil {
		return nil, err
	}

	method := string(bridge.MethodGet)
	if form != nil {
		method = string(bridge.MethodPost)
	}
	s.mu.Lock()
	s.handled = append(s.handled, Handled{Action: action, URL: rawURL, Method: method})
	s.mu.Unlock()

	s.logger.Debug("Handling dispatch", zap.String("action", action.Name), zap.String("method", method))

	switch action.Name {
	case bridge.ActionSetPreference:
		s.SetPreference(action.Param("key"), action.Param("value"))
		return nil, nil

	case bridge.ActionGetPreference:
		key := action.Param("key")
		value, _ := s.Preference(key)
		return func(cb bridge.Callbacks) { cb.DidSuccessGetPreference(key, value) }, nil

	case bridge.ActionGetLocation:
		pos, err := s.CurrentPosition(ctx)
		if err != nil {
			reason := bridge.ReasonFor(err)
			return func(cb bridge.Callbacks) { cb.DidFailGetLocation(reason) }, nil
		}
		return func(cb bridge.Callbacks) { cb.DidSuccessGetLocation(pos.Latitude, pos.Longitude) }, nil

	case bridge.ActionRequest:
		return s.request(ctx, action), nil

	case bridge.ActionMaps, bridge.ActionOpenApp, bridge.ActionGoToSection,
		bridge.ActionNavigatePush, bridge.ActionNavigateModal, bridge.ActionNavigateBack,
		bridge.ActionAuthenticate, bridge.ActionShare, bridge.ActionGetMedia:
		return nil, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownAction, action.Name)
	}
}

// request answers from the canned responses first, then through the
// transport when passthrough is enabled.
func (s *Simulator) request(ctx context.Context, action Action) func(bridge.Callbacks) {
	target := action.Param("url")
	tag := action.Param("tag")

	if canned, ok := s.fixtures.Responses[target]; ok {
		resp := &bridge.Response{Status: canned.Status, Body: canned.Body}
		return replyFor(tag, resp, nil)
	}

	if !s.fixtures.Passthrough || s.transport == nil {
		s.logger.Debug("No response for request", zap.String("url", target))
		return func(cb bridge.Callbacks) { cb.RequestDidFail(tag, 404, "no fixture for "+target) }
	}

	method := bridge.ParseMethod(action.Param("method"))
	resp, err := s.passthrough(ctx, method, target, action.Body)
	if errors.Is(err, resilience.ErrOpen) {
		s.logger.Warn("Upstream breaker open", zap.String("url", target))
		return func(cb bridge.Callbacks) { cb.RequestDidFail(tag, http.StatusServiceUnavailable, err.Error()) }
	}
	return replyFor(tag, resp, err)
}

func (s *Simulator) passthrough(ctx context.Context, method bridge.Method, target string, body *bridge.Params) (*bridge.Response, error) {
	if s.guard == nil {
		return s.transport.Do(ctx, method, target, body)
	}
	var resp *bridge.Response
	err := s.guard.Get(upstream(target)).Do(func() error {
		var err error
		resp, err = s.transport.Do(ctx, method, target, body)
		return err
	}, func(err error) bool {
		return err != nil || resp.Status >= http.StatusInternalServerError
	})
	return resp, err
}

func upstream(target string) string {
	u, err := url.Parse(target)
	if err != nil || u.Host == "" {
		return target
	}
	return u.Host
}

func replyFor(tag string, resp *bridge.Response, err error) func(bridge.Callbacks) {
	return func(cb bridge.Callbacks) {
		switch {
		case err != nil:
			cb.RequestDidFail(tag, 0, err.Error())
		case resp.OK():
			cb.RequestDidSuccess(tag, resp.Body, "")
		default:
			cb.RequestDidFail(tag, resp.Status, resp.Body)
		}
	}
}

// CurrentPosition implements bridge.Geolocator from the location fixture.
func (s *Simulator) CurrentPosition(ctx context.Context) (bridge.Position, error) {
	if err := ctx.Err(); err != nil {
		return bridge.Position{}, err
	}
	if s.fixtures.LocationErr != "" {
		reason := bridge.GeolocationReason(s.fixtures.LocationErr)
		return bridge.Position{}, &bridge.GeolocationError{Code: codeFor(reason), Message: "fixture"}
	}
	if s.fixtures.Location == nil {
		return bridge.Position{}, &bridge.GeolocationError{Code: bridge.CodePositionUnavailable}
	}
	return *s.fixtures.Location, nil
}

// SetPreference stores a preference
func (s *Simulator) SetPreference(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preferences[key] = value
}

// Preference returns a stored preference; unknown keys read as ""
func (s *Simulator) Preference(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.preferences[key]
	return v, ok
}

// Handled returns the dispatches received so far
func (s *Simulator) Handled() []Handled {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Handled(nil), s.handled...)
}
