package bridge

import (
	"context"
	"errors"
	"fmt"
)

// Navigator performs the page-level side effects of a dispatch. In a web view
// these are location.replace, alert and form submission.
type Navigator interface {
	Replace(url string) error
	Alert(message string)
	Submit(form *Form) error
}

// Callbacks is implemented by the embedding page. The bridge only calls it,
// from the desktop fallback paths; on a device the native host invokes the
// same functions itself.
type Callbacks interface {
	RequestDidSuccess(tag, body, extra string)
	RequestDidFail(tag string, status int, message string)
	DidSuccessGetLocation(latitude, longitude float64)
	DidFailGetLocation(reason GeolocationReason)
	DidSuccessGetPreference(key, value string)
}

// Executor runs asynchronous work for a Dispatcher. Async runs work off the
// page thread; the function work returns, if any, must then run on the page
// thread.
type Executor interface {
	Async(work func() func())
}

// Position is a geographic fix.
type Position struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// Geolocator reads the current position in desktop mode.
type Geolocator interface {
	CurrentPosition(ctx context.Context) (Position, error)
}

// GeolocatorFunc adapts a function to Geolocator.
type GeolocatorFunc func(ctx context.Context) (Position, error)

// CurrentPosition calls f(ctx).
func (f GeolocatorFunc) CurrentPosition(ctx context.Context) (Position, error) { return f(ctx) }

// GeolocationReason is the string delivered to gbDidFailGetLocation.
type GeolocationReason string

const (
	ReasonTimeout             GeolocationReason = "Timeout"
	ReasonPositionUnavailable GeolocationReason = "Position unavailable"
	ReasonPermissionDenied    GeolocationReason = "Permission denied"
	ReasonUnknown             GeolocationReason = "Unknown error"
)

// GeolocationCode mirrors the W3C PositionError codes.
type GeolocationCode int

const (
	CodeUnknown             GeolocationCode = 0
	CodePermissionDenied    GeolocationCode = 1
	CodePositionUnavailable GeolocationCode = 2
	CodeTimeout             GeolocationCode = 3
)

// Reason maps a code to the failure reason reported to the page.
func (c GeolocationCode) Reason() GeolocationReason {
	switch c {
	case CodePermissionDenied:
		return ReasonPermissionDenied
	case CodePositionUnavailable:
		return ReasonPositionUnavailable
	case CodeTimeout:
		return ReasonTimeout
	default:
		return ReasonUnknown
	}
}

// GeolocationError is returned by a Geolocator that could not get a fix.
type GeolocationError struct {
	Code    GeolocationCode
	Message string
}

func (e *GeolocationError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("geolocation failed: %s", e.Code.Reason())
	}
	return fmt.Sprintf("geolocation failed: %s: %s", e.Code.Reason(), e.Message)
}

// ReasonFor classifies any error returned by a Geolocator. Context deadline
// errors count as timeouts; anything unrecognized is unknown.
func ReasonFor(err error) GeolocationReason {
	var geoErr *GeolocationError
	switch {
	case errors.As(err, &geoErr):
		return geoErr.Code.Reason()
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	default:
		return ReasonUnknown
	}
}
