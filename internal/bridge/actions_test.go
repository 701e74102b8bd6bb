package bridge_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/gbbridge/internal/bridge"
	"github.com/GriffinCanCode/gbbridge/internal/testutil"
)

func TestNavigationActions(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		call func(d *bridge.Dispatcher) error
		want string
	}{
		{
			name: "mailto encodes subject and body",
			call: func(d *bridge.Dispatcher) error { return d.Mailto("x@y.com", "Hi", "Body") },
			want: "mailto:x@y.com?subject=Hi&body=Body",
		},
		{
			name: "mailto with spaces",
			call: func(d *bridge.Dispatcher) error { return d.Mailto("x@y.com", "Hello there", "a&b") },
			want: "mailto:x@y.com?subject=Hello%20there&body=a%26b",
		},
		{
			name: "tel has no query",
			call: func(d *bridge.Dispatcher) error { return d.Tel("12345") },
			want: "tel:12345",
		},
		{
			name: "sms",
			call: func(d *bridge.Dispatcher) error { return d.SMS("555") },
			want: "sms:555",
		},
		{
			name: "maps without params",
			call: func(d *bridge.Dispatcher) error { return d.Maps(nil) },
			want: "goodbarber://maps?q=",
		},
		{
			name: "maps with params",
			call: func(d *bridge.Dispatcher) error { return d.Maps(bridge.NewParams("q", "Eiffel Tower")) },
			want: "goodbarber://maps?q=Eiffel%20Tower",
		},
		{
			name: "openapp",
			call: func(d *bridge.Dispatcher) error { return d.OpenApp("fb", "fb://profile/42") },
			want: "goodbarber://openapp?scheme=fb&url=fb%3A%2F%2Fprofile%2F42",
		},
		{
			name: "gotosection",
			call: func(d *bridge.Dispatcher) error { return d.GoToSection("42") },
			want: "goodbarber://gotosection?id=42",
		},
		{
			name: "navigate back",
			call: func(d *bridge.Dispatcher) error { return d.NavigateBack() },
			want: "goodbarber://navigate.back",
		},
		{
			name: "request GET",
			call: func(d *bridge.Dispatcher) error {
				return d.Request(ctx, bridge.FetchRequest{URL: "http://api.io/x?a=1", Tag: "t1", Cache: "true"})
			},
			want: "goodbarber://request?url=http%3A%2F%2Fapi.io%2Fx%3Fa%3D1&tag=t1&cache=true&method=GET",
		},
		{
			name: "request cache forwarded verbatim",
			call: func(d *bridge.Dispatcher) error {
				return d.Request(ctx, bridge.FetchRequest{URL: "u", Tag: "t", Cache: "1"})
			},
			want: "goodbarber://request?url=u&tag=t&cache=1&method=GET",
		},
		{
			name: "authenticate defaults",
			call: func(d *bridge.Dispatcher) error { return d.Authenticate("", "") },
			want: "goodbarber://authenticate?services=all&skip=YES",
		},
		{
			name: "authenticate explicit",
			call: func(d *bridge.Dispatcher) error { return d.Authenticate("facebook", "NO") },
			want: "goodbarber://authenticate?services=facebook&skip=NO",
		},
		{
			name: "share",
			call: func(d *bridge.Dispatcher) error { return d.Share("Look", "http://x.io") },
			want: "goodbarber://share?text=Look&link=http%3A%2F%2Fx.io",
		},
		{
			name: "getmedia",
			call: func(d *bridge.Dispatcher) error { return d.GetMedia(bridge.MediaVideo, bridge.SourceLibrary) },
			want: "goodbarber://getmedia?type=video&source=library",
		},
		{
			name: "getmedia defaults",
			call: func(d *bridge.Dispatcher) error { return d.GetMedia("", "") },
			want: "goodbarber://getmedia?type=photo&source=all",
		},
		{
			name: "getlocation",
			call: func(d *bridge.Dispatcher) error { return d.GetLocation(ctx) },
			want: "goodbarber://getlocation",
		},
		{
			name: "setpreference",
			call: func(d *bridge.Dispatcher) error { return d.SetPreference("theme", "dark") },
			want: "goodbarber://setpreference?key=theme&value=dark",
		},
		{
			name: "getpreference",
			call: func(d *bridge.Dispatcher) error { return d.GetPreference("theme") },
			want: "goodbarber://getpreference?key=theme",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nav := new(testutil.MockNavigator)
			nav.On("Replace", tt.want).Return(nil).Once()

			d := newDispatcher(t, bridge.Config{}, nav)
			require.NoError(t, tt.call(d))

			nav.AssertExpectations(t)
		})
	}
}

func TestFormActions(t *testing.T) {
	tests := []struct {
		name       string
		call       func(d *bridge.Dispatcher) error
		wantAction string
		wantFields []bridge.Field
	}{
		{
			name:       "navigate push",
			call:       func(d *bridge.Dispatcher) error { return d.NavigatePush("pageA", bridge.NewParams("x", "1")) },
			wantAction: "goodbarber://navigate.push?page=pageA",
			wantFields: []bridge.Field{{Name: "x", Value: "1"}},
		},
		{
			name:       "navigate modal without params",
			call:       func(d *bridge.Dispatcher) error { return d.NavigateModal("page B", nil) },
			wantAction: "goodbarber://navigate.modal?page=page%20B",
			wantFields: []bridge.Field{},
		},
		{
			name: "request POST",
			call: func(d *bridge.Dispatcher) error {
				return d.Request(context.Background(), bridge.FetchRequest{
					URL:    "http://api.io/login",
					Tag:    "login",
					Method: bridge.MethodPost,
					Params: bridge.NewParams("user", "ann", "pass", "p&w"),
				})
			},
			wantAction: "goodbarber://request?url=http%3A%2F%2Fapi.io%2Flogin&tag=login&cache=&method=POST",
			wantFields: []bridge.Field{{Name: "user", Value: "ann"}, {Name: "pass", Value: "p&w"}},
		},
		{
			name: "request keeps other methods",
			call: func(d *bridge.Dispatcher) error {
				return d.Request(context.Background(), bridge.FetchRequest{
					URL:    "http://api.io/item/1",
					Tag:    "del",
					Cache:  "false",
					Method: bridge.ParseMethod("DELETE"),
					Params: bridge.NewParams("force", "1"),
				})
			},
			wantAction: "goodbarber://request?url=http%3A%2F%2Fapi.io%2Fitem%2F1&tag=del&cache=false&method=DELETE",
			wantFields: []bridge.Field{{Name: "force", Value: "1"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *bridge.Form
			nav := new(testutil.MockNavigator)
			nav.On("Submit", mock.Anything).Run(func(args mock.Arguments) {
				got = args.Get(0).(*bridge.Form)
			}).Return(nil).Once()

			d := newDispatcher(t, bridge.Config{}, nav)
			require.NoError(t, tt.call(d))

			nav.AssertExpectations(t)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantAction, got.Action)
			assert.Equal(t, tt.wantFields, got.Fields)
		})
	}
}

func TestDesktopGetPreference(t *testing.T) {
	var order []string
	nav := new(testutil.MockNavigator)
	nav.On("Replace", "goodbarber://getpreference?key=theme").Run(func(mock.Arguments) {
		order = append(order, "navigate")
	}).Return(nil).Once()
	cb := new(testutil.MockCallbacks)
	cb.On("DidSuccessGetPreference", "theme", "").Run(func(mock.Arguments) {
		order = append(order, "callback")
	}).Return().Once()

	d := newDispatcher(t, bridge.Config{DesktopMode: true}, nav).WithCallbacks(cb)
	require.NoError(t, d.GetPreference("theme"))

	cb.AssertExpectations(t)
	nav.AssertExpectations(t)
	assert.Equal(t, []string{"callback", "navigate"}, order)
}

func TestDesktopRequiresCallbacks(t *testing.T) {
	d := newDispatcher(t, bridge.Config{DesktopMode: true}, testutil.NewMockNavigator(t))

	assert.ErrorIs(t, d.GetPreference("k"), bridge.ErrNoCallbacks)
	assert.ErrorIs(t, d.GetLocation(context.Background()), bridge.ErrNoCallbacks)
	assert.ErrorIs(t, d.Request(context.Background(), bridge.FetchRequest{URL: "http://x"}), bridge.ErrNoCallbacks)
}

func TestDesktopGetLocation(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		cb := new(testutil.MockCallbacks)
		cb.On("DidSuccessGetLocation", 48.85, 2.35).Return().Once()

		d := newDispatcher(t, bridge.Config{DesktopMode: true}, testutil.NewMockNavigator(t)).
			WithCallbacks(cb).
			WithExecutor(testutil.SyncExecutor{}).
			WithGeolocator(bridge.GeolocatorFunc(func(context.Context) (bridge.Position, error) {
				return bridge.Position{Latitude: 48.85, Longitude: 2.35}, nil
			}))
		require.NoError(t, d.GetLocation(ctx))

		cb.AssertExpectations(t)
	})

	failures := []struct {
		name string
		err  error
		want bridge.GeolocationReason
	}{
		{"timeout", &bridge.GeolocationError{Code: bridge.CodeTimeout}, bridge.ReasonTimeout},
		{"unavailable", &bridge.GeolocationError{Code: bridge.CodePositionUnavailable}, bridge.ReasonPositionUnavailable},
		{"denied", &bridge.GeolocationError{Code: bridge.CodePermissionDenied}, bridge.ReasonPermissionDenied},
		{"unknown code", &bridge.GeolocationError{Code: bridge.CodeUnknown}, bridge.ReasonUnknown},
		{"deadline", context.DeadlineExceeded, bridge.ReasonTimeout},
		{"other", errors.New("gps off"), bridge.ReasonUnknown},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			cb := new(testutil.MockCallbacks)
			cb.On("DidFailGetLocation", tt.want).Return().Once()

			d := newDispatcher(t, bridge.Config{DesktopMode: true}, testutil.NewMockNavigator(t)).
				WithCallbacks(cb).
				WithExecutor(testutil.SyncExecutor{}).
				WithGeolocator(bridge.GeolocatorFunc(func(context.Context) (bridge.Position, error) {
					return bridge.Position{}, tt.err
				}))
			require.NoError(t, d.GetLocation(ctx))

			cb.AssertExpectations(t)
			cb.AssertNotCalled(t, "DidSuccessGetLocation", mock.Anything, mock.Anything)
		})
	}

	t.Run("missing geolocator", func(t *testing.T) {
		d := newDispatcher(t, bridge.Config{DesktopMode: true}, testutil.NewMockNavigator(t)).
			WithCallbacks(new(testutil.MockCallbacks))
		assert.ErrorIs(t, d.GetLocation(ctx), bridge.ErrNoGeolocator)
	})
}

func TestDesktopModeLeavesOtherActionsOnTheScheme(t *testing.T) {
	nav := new(testutil.MockNavigator)
	nav.On("Replace", "goodbarber://share?text=a&link=b").Return(nil).Once()

	d := newDispatcher(t, bridge.Config{DesktopMode: true}, nav).WithCallbacks(new(testutil.MockCallbacks))
	require.NoError(t, d.Share("a", "b"))

	nav.AssertExpectations(t)
}
