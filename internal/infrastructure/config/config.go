package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/GriffinCanCode/gbbridge/internal/bridge"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Bridge    BridgeConfig
	Sandbox   SandboxConfig
	Host      HostConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
	// CORSOrigins is comma separated; "*" allows any origin
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`
}

// BridgeConfig holds the dispatch switches and the desktop transport
// settings.
type BridgeConfig struct {
	DebugMode      bridge.DebugMode `envconfig:"GB_DEBUG_MODE" default:"production"`
	DesktopMode    bool             `envconfig:"GB_DESKTOP_MODE" default:"false"`
	DesktopTimeout time.Duration    `envconfig:"GB_DESKTOP_TIMEOUT" default:"30s"`
	UserAgent      string           `envconfig:"GB_USER_AGENT" default:"gbbridge-desktop/1.0"`
}

// SandboxConfig holds page script runtime configuration.
type SandboxConfig struct {
	Timeout  time.Duration `envconfig:"SANDBOX_TIMEOUT" default:"5s"`
	PoolSize int           `envconfig:"SANDBOX_POOL_SIZE" default:"4"`
}

// HostConfig holds host simulator configuration.
type HostConfig struct {
	Fixtures string `envconfig:"HOST_FIXTURES" default:""`
	Simulate bool   `envconfig:"HOST_SIMULATE" default:"true"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"20"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"40"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// BridgeSettings returns the dispatcher switches.
func (c *Config) BridgeSettings() bridge.Config {
	return bridge.Config{
		DebugMode:   c.Bridge.DebugMode,
		DesktopMode: c.Bridge.DesktopMode,
	}
}

// TransportSettings returns the desktop transport configuration.
func (c *Config) TransportSettings() bridge.TransportConfig {
	return bridge.TransportConfig{
		Timeout:   c.Bridge.DesktopTimeout,
		UserAgent: c.Bridge.UserAgent,
	}
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8000",
			Host:        "0.0.0.0",
			CORSOrigins: []string{"*"},
		},
		Bridge: BridgeConfig{
			DebugMode:      bridge.Production,
			DesktopMode:    false,
			DesktopTimeout: 30 * time.Second,
			UserAgent:      "gbbridge-desktop/1.0",
		},
		Sandbox: SandboxConfig{
			Timeout:  5 * time.Second,
			PoolSize: 4,
		},
		Host: HostConfig{
			Simulate: true,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 20,
			Burst:             40,
			Enabled:           true,
		},
	}
}
