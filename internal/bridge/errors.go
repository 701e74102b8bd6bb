package bridge

import "errors"

var (
	ErrEmptyPath    = errors.New("bridge: empty destination path")
	ErrNoNavigator  = errors.New("bridge: navigator is required")
	ErrNoCallbacks  = errors.New("bridge: desktop mode requires host callbacks")
	ErrNoGeolocator = errors.New("bridge: desktop mode requires a geolocator")
)
