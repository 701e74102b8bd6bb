package host

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/GriffinCanCode/gbbridge/internal/bridge"
)

// Fixtures is the simulated device state
type Fixtures struct {
	Preferences map[string]string   `yaml:"preferences" json:"preferences,omitempty"`
	Location    *bridge.Position    `yaml:"location" json:"location,omitempty"`
	LocationErr string              `yaml:"location_error" json:"location_error,omitempty"` // "Permission denied", or PERMISSION_DENIED
	Responses   map[string]Response `yaml:"responses" json:"responses,omitempty"`
	Passthrough bool                `yaml:"passthrough" json:"passthrough,omitempty"` // proxy unmatched requests
}

// Response is a canned answer to a request action
type Response struct {
	Status int    `yaml:"status" json:"status"`
	Body   string `yaml:"body" json:"body"`
}

// ParseFixtures decodes YAML fixtures
func ParseFixtures(data []byte) (Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Fixtures{}, fmt.Errorf("parse fixtures: %w", err)
	}
	if f.LocationErr != "" && codeFor(bridge.GeolocationReason(f.LocationErr)) == bridge.CodeUnknown &&
		f.LocationErr != string(bridge.ReasonUnknown) && f.LocationErr != "UNKNOWN_ERROR" {
		return Fixtures{}, fmt.Errorf("parse fixtures: unknown location_error %q", f.LocationErr)
	}
	return f, nil
}

// LoadFixtures reads fixtures from a YAML file
func LoadFixtures(path string) (Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixtures{}, fmt.Errorf("read fixtures: %w", err)
	}
	return ParseFixtures(data)
}

// codeFor accepts the reason delivered to the page as well as the W3C
// PositionError constant name.
func codeFor(reason bridge.GeolocationReason) bridge.GeolocationCode {
	switch reason {
	case bridge.ReasonPermissionDenied, "PERMISSION_DENIED":
		return bridge.CodePermissionDenied
	case bridge.ReasonPositionUnavailable, "POSITION_UNAVAILABLE":
		return bridge.CodePositionUnavailable
	case bridge.ReasonTimeout, "TIMEOUT":
		return bridge.CodeTimeout
	default:
		return bridge.CodeUnknown
	}
}
