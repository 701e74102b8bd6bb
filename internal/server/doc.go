// Package server wires the development host: sandbox pool, host simulator,
// runner, REST handlers and the run stream.
//
// Server Lifecycle:
//  1. Load configuration from the environment
//  2. Initialize logger and metrics
//  3. Load host fixtures
//  4. Build the sandbox pool and the runner
//  5. Setup HTTP routes and middleware
//  6. Serve until Shutdown
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	srv, err := server.NewServer(cfg)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
