// Package main is the entry point of the gbbridge development host.
//
// The host runs GoodBarber pages in a sandbox, answers their goodbarber://
// dispatches with a simulated native application and streams every run to
// websocket clients.
//
// Configuration:
//   - Environment variables (PORT, GB_DEBUG_MODE, GB_DESKTOP_MODE, HOST_FIXTURES, ...)
//   - CLI flags (override env vars)
//
// Usage:
//
//	./server -port 8000 -fixtures device.yaml
//
//	# Show every dispatch as an alert instead of navigating
//	./server -debug-mode suppress -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
