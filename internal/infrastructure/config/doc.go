// Package config provides 12-factor configuration management for gbbridge.
//
// Configuration is loaded from environment variables with sensible defaults.
//
// Configuration Sections:
//   - Server: development host HTTP settings (port, host)
//   - Bridge: debug mode, desktop mode and the desktop transport
//   - Sandbox: page script timeout and runtime pool size
//   - Host: host simulator fixtures
//   - Logging: log level and output format
//   - RateLimit: per-IP rate limiting for the development host
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	d, err := bridge.New(cfg.BridgeSettings(), nav)
//
// Environment Variables:
//   - PORT, HOST
//   - GB_DEBUG_MODE (production|alert|suppress), GB_DESKTOP_MODE, GB_DESKTOP_TIMEOUT, GB_USER_AGENT
//   - SANDBOX_TIMEOUT, SANDBOX_POOL_SIZE
//   - HOST_FIXTURES, HOST_SIMULATE
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
package config
