package bridge

import (
	"fmt"
	"strings"
)

// DebugMode controls whether dispatches are shown to the developer and
// whether they are actually sent.
type DebugMode int

const (
	// Production dispatches immediately.
	Production DebugMode = iota
	// AlertBeforeSend shows the destination, then dispatches.
	AlertBeforeSend
	// AlertAndSuppress shows the destination and drops the dispatch.
	AlertAndSuppress
)

// String returns the configuration name of the mode.
func (m DebugMode) String() string {
	switch m {
	case Production:
		return "production"
	case AlertBeforeSend:
		return "alert"
	case AlertAndSuppress:
		return "suppress"
	default:
		return "unknown"
	}
}

// Alerts reports whether the mode shows the destination before dispatch.
func (m DebugMode) Alerts() bool {
	return m == AlertBeforeSend || m == AlertAndSuppress
}

// Suppresses reports whether the mode drops the dispatch.
func (m DebugMode) Suppresses() bool {
	return m == AlertAndSuppress
}

// ParseDebugMode accepts the names returned by String and the numeric forms
// 0, 1 and 2. The empty string is Production.
func ParseDebugMode(s string) (DebugMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "0", "production", "prod":
		return Production, nil
	case "1", "alert":
		return AlertBeforeSend, nil
	case "2", "suppress":
		return AlertAndSuppress, nil
	default:
		return Production, fmt.Errorf("unknown debug mode %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m DebugMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *DebugMode) UnmarshalText(text []byte) error {
	parsed, err := ParseDebugMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Decode implements envconfig.Decoder.
func (m *DebugMode) Decode(value string) error {
	return m.UnmarshalText([]byte(value))
}
