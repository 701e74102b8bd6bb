package sandbox

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/gbbridge/internal/bridge"
	"github.com/GriffinCanCode/gbbridge/internal/infrastructure/monitoring"
)

// Config defines sandbox configuration
type Config struct {
	Timeout          time.Duration // Script run plus callback drain
	MaxCallStackSize int           // goja call stack limit
	EnableConsole    bool          // Allow console.log/warn/error

	Bridge    bridge.Config          // Debug and desktop switches for page dispatches
	Transport bridge.TransportConfig // Desktop fallback HTTP client

	Host       Host              // Answers goodbarber:// dispatches; nil means nothing answers
	Geolocator bridge.Geolocator // Desktop position source
	Logger     *zap.Logger
	Metrics    *monitoring.Metrics
}

// RunOptions override Config for a single run
type RunOptions struct {
	Bridge     *bridge.Config
	Host       Host
	Geolocator bridge.Geolocator
}

// Host answers scheme dispatches the way the native application would. The
// returned reply, if any, runs on the page loop with the page callbacks.
type Host interface {
	Handle(ctx context.Context, url string, form *bridge.Form) (func(bridge.Callbacks), error)
}

// Result holds execution result
type Result struct {
	Value      interface{}     `json:"value,omitempty"`
	Console    []LogEntry      `json:"console"`
	Dispatches []Dispatch      `json:"dispatches"`
	Callbacks  []CallbackEntry `json:"callbacks"`
	DOMChanges []DOMChange     `json:"dom_changes"`
	Location   string          `json:"location,omitempty"`
	Duration   time.Duration   `json:"duration"`
	Error      error           `json:"-"`
}

// LogEntry represents console output
type LogEntry struct {
	Level   string    `json:"level"` // log, warn, error, info
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// Dispatch kinds
const (
	KindNavigate = "navigate"
	KindSubmit   = "submit"
	KindAlert    = "alert"
)

// Dispatch is one page side effect observed by the sandbox
type Dispatch struct {
	Kind string       `json:"kind"`
	URL  string       `json:"url,omitempty"`
	Form *bridge.Form `json:"form,omitempty"`
	Text string       `json:"text,omitempty"` // alert message
	Time time.Time    `json:"time"`
}

// CallbackEntry records a host callback delivered to the page
type CallbackEntry struct {
	Name    string        `json:"name"`
	Args    []interface{} `json:"args"`
	Defined bool          `json:"defined"` // false when the page has no such function
	Error   string        `json:"error,omitempty"`
}

// Sandbox defines the JavaScript execution interface
type Sandbox interface {
	Execute(ctx context.Context, script string, dom *DOM) (*Result, error)
	Reset() error
	Close() error
}

// Default configuration
func DefaultConfig() Config {
	return Config{
		Timeout:          5 * time.Second,
		MaxCallStackSize: 1024,
		EnableConsole:    true,
		Transport:        bridge.DefaultTransportConfig(),
	}
}
