/*
Package monitoring provides Prometheus metrics for the bridge and the
development host.

# Features

- HTTP request metrics (latency, throughput, size)
- Dispatch counters by action, kind and outcome
- Desktop fallback request counters and latency
- Page script runs and host callback deliveries
- WebSocket connection metrics

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	dispatcher.WithMetrics(metrics)
*/
package monitoring
