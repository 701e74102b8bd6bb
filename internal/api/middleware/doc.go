// Package middleware provides the gin middleware of the development host.
//
//   - CORS: lets browser tools on other origins post pages to /v1/run
//   - RateLimit: per-IP token buckets, idle clients are evicted
//   - RequestLogger: one zap line per request
//
// Example Usage:
//
//	router.Use(middleware.CORS(cfg.Server.CORSOrigins))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
