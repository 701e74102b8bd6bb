// Package http provides the REST handlers of the development host.
//
// Endpoints:
//   - GET /: service info
//   - GET /health: pool occupancy, stream clients, uptime
//   - GET /metrics: Prometheus exposition
//   - GET /metrics/json: request, dispatch and run counters
//   - POST /v1/run: run a page ({html} or {script}) and return its record
//   - GET /v1/runs, GET /v1/runs/:id: recently completed records
package http
