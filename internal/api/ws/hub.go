package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/gbbridge/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/gbbridge/internal/runner"
)

const (
	sendBuffer   = 32
	writeTimeout = 10 * time.Second
	runTimeout   = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in dev
	},
}

// Message is a client or server frame
type Message struct {
	Type      string         `json:"type"`
	ClientID  string         `json:"client_id,omitempty"`
	Input     *runner.Input  `json:"input,omitempty"`
	Record    *runner.Record `json:"record,omitempty"`
	Message   string         `json:"message,omitempty"`
	Timestamp int64          `json:"timestamp"`
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub tracks connected clients and broadcasts run records
type Hub struct {
	runner  *runner.Runner
	logger  *zap.Logger
	metrics *monitoring.Metrics

	mu      sync.RWMutex
	clients map[string]*client
}

// NewHub creates a hub and subscribes it to r
func NewHub(r *runner.Runner) *Hub {
	h := &Hub{
		runner:  r,
		logger:  zap.NewNop(),
		clients: make(map[string]*client),
	}
	if r != nil {
		r.Subscribe(h.Broadcast)
	}
	return h
}

// WithLogger sets the logger
func (h *Hub) WithLogger(logger *zap.Logger) *Hub {
	if logger != nil {
		h.logger = logger.Named("ws")
	}
	return h
}

// WithMetrics enables metrics collection
func (h *Hub) WithMetrics(metrics *monitoring.Metrics) *Hub {
	h.metrics = metrics
	return h
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleConnection handles WebSocket upgrade and messages
func (h *Hub) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	cl := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
	h.register(cl)
	done := make(chan struct{})
	go h.writeLoop(cl, done)
	defer h.unregister(cl, done)

	h.reply(cl, Message{Type: "system", ClientID: cl.id, Message: "connected"})

	reqCtx := c.Request.Context()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			h.logger.Debug("WebSocket read ended", zap.String("client", cl.id), zap.Error(err))
			return
		}

		var msg Message
		if err := sonic.Unmarshal(data, &msg); err != nil {
			h.reply(cl, Message{Type: "error", Message: "invalid message"})
			continue
		}
		h.record("in", msg.Type)

		switch msg.Type {
		case "ping":
			h.reply(cl, Message{Type: "pong"})
		case "run":
			h.run(reqCtx, cl, msg)
		default:
			h.reply(cl, Message{Type: "error", Message: "unknown message type"})
		}
	}
}

// run executes the requested page; the record reaches the client through
// the broadcast.
func (h *Hub) run(ctx context.Context, cl *client, msg Message) {
	if msg.Input == nil || h.runner == nil {
		h.reply(cl, Message{Type: "error", Message: "run requires input"})
		return
	}
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	if _, err := h.runner.Run(ctx, *msg.Input); err != nil {
		h.reply(cl, Message{Type: "error", Message: err.Error()})
	}
}

// Broadcast sends a record to every client. Slow clients miss records rather
// than blocking the runner.
func (h *Hub) Broadcast(rec *runner.Record) {
	data, err := encode(Message{Type: "run", Record: rec})
	if err != nil {
		h.logger.Error("Failed to encode record", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, cl := range h.clients {
		select {
		case cl.send <- data:
			h.record("out", "run")
		default:
			h.logger.Warn("Dropping record for slow client", zap.String("client", cl.id))
		}
	}
}

func (h *Hub) reply(cl *client, msg Message) {
	data, err := encode(msg)
	if err != nil {
		h.logger.Error("Failed to encode message", zap.Error(err))
		return
	}
	select {
	case cl.send <- data:
		h.record("out", msg.Type)
	default:
	}
}

func (h *Hub) writeLoop(cl *client, done chan<- struct{}) {
	defer close(done)
	for data := range cl.send {
		_ = cl.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := cl.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Debug("WebSocket write failed", zap.String("client", cl.id), zap.Error(err))
			// Keep draining so senders never block
			for range cl.send {
			}
			return
		}
	}
}

func (h *Hub) register(cl *client) {
	h.mu.Lock()
	h.clients[cl.id] = cl
	h.mu.Unlock()
	if h.metrics != nil {
		h.metrics.IncWSConnections()
	}
	h.logger.Info("Client connected", zap.String("client", cl.id))
}

// unregister stops broadcasts to cl, lets the writer flush and closes the
// connection.
func (h *Hub) unregister(cl *client, writerDone <-chan struct{}) {
	h.mu.Lock()
	delete(h.clients, cl.id)
	close(cl.send)
	h.mu.Unlock()
	<-writerDone
	cl.conn.Close()
	if h.metrics != nil {
		h.metrics.DecWSConnections()
	}
	h.logger.Info("Client disconnected", zap.String("client", cl.id))
}

func (h *Hub) record(direction, msgType string) {
	if h.metrics != nil {
		h.metrics.RecordWSMessage(direction, msgType)
	}
}

func encode(msg Message) ([]byte, error) {
	msg.Timestamp = time.Now().Unix()
	return sonic.Marshal(msg)
}
