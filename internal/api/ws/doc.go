// Package ws streams page run records to connected clients.
//
// Every record the runner completes is broadcast to all clients. Clients may
// also start runs over the socket.
//
// Message Types (Client → Server):
//   - run: run the page in "input"
//   - ping: keep-alive ping
//
// Message Types (Server → Client):
//   - system: connection accepted, carries the client id
//   - run: a completed run record
//   - pong: reply to ping
//   - error: the last client message failed
//
// Example Usage:
//
//	hub := ws.NewHub(runner).WithLogger(logger).WithMetrics(metrics)
//	router.GET("/v1/stream", hub.HandleConnection)
package ws
