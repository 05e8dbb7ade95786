package notify

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"livecast/internal/core/domain"
	"livecast/pkg/utils"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Should be configured properly for production
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

const (
	defaultPingInterval = 30 * time.Second
	defaultPongTimeout  = 60 * time.Second
	defaultSendBuffer   = 16

	writeTimeout = 10 * time.Second

	// Status clients never send application data, only control frames.
	maxInboundBytes = 512
)

type Config struct {
	PingInterval time.Duration
	PongTimeout  time.Duration
	SendBuffer   int

	// MaxClients caps concurrent connections; 0 means unlimited.
	MaxClients int
	// ConnectionsPerMinute throttles new connection attempts; 0 disables.
	ConnectionsPerMinute int
}

// Hub fans status events out to connected WebSocket clients.
// Delivery is fire-and-forget: a client whose send buffer is full
// misses the event instead of stalling the broadcast.
type Hub struct {
	cfg    Config
	logger *zap.SugaredLogger

	clients map[string]*client
	mu      sync.RWMutex

	limiter *rate.Limiter
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func NewHub(cfg Config, logger *zap.SugaredLogger) *Hub {
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = defaultPingInterval
	}
	if cfg.PongTimeout <= 0 {
		cfg.PongTimeout = defaultPongTimeout
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = defaultSendBuffer
	}

	var limiter *rate.Limiter
	if cfg.ConnectionsPerMinute > 0 {
		limiter = rate.NewLimiter(
			rate.Every(time.Minute/time.Duration(cfg.ConnectionsPerMinute)),
			cfg.ConnectionsPerMinute,
		)
	}

	return &Hub{
		cfg:     cfg,
		logger:  logger,
		clients: make(map[string]*client),
		limiter: limiter,
	}
}

// HandleConnection upgrades the request and serves the client until it
// disconnects. It blocks, so route it as a plain http.HandlerFunc.
func (h *Hub) HandleConnection(w http.ResponseWriter, r *http.Request) {
	if h.limiter != nil && !h.limiter.Allow() {
		http.Error(w, "too many connection attempts", http.StatusTooManyRequests)
		return
	}
	if h.cfg.MaxClients > 0 && h.ClientCount() >= h.cfg.MaxClients {
		http.Error(w, "client limit reached", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warnw("websocket upgrade failed", "remote_addr", r.RemoteAddr, "error", err)
		return
	}

	c := &client{
		id:   utils.GenerateClientID(),
		conn: conn,
		send: make(chan []byte, h.cfg.SendBuffer),
	}

	h.mu.Lock()
	h.clients[c.id] = c
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Infow("status client connected",
		"client_id", c.id,
		"remote_addr", r.RemoteAddr,
		"clients", total)

	go h.writePump(c)
	h.readPump(c)
}

// Notify implements ports.Notifier.
func (h *Hub) Notify(event domain.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Errorw("failed to marshal event", "type", event.Type, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warnw("dropping event for slow status client",
				"client_id", c.id,
				"type", event.Type)
		}
	}
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client. The hub stays usable afterwards;
// Notify on an empty hub is a no-op.
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		h.drop(c)
	}
}

// drop removes the client from the registry before closing its send
// channel, so no broadcast can write to a closed channel.
func (h *Hub) drop(c *client) {
	c.once.Do(func() {
		h.mu.Lock()
		delete(h.clients, c.id)
		total := len(h.clients)
		h.mu.Unlock()

		close(c.send)
		_ = c.conn.Close()

		h.logger.Infow("status client disconnected", "client_id", c.id, "clients", total)
	})
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.logger.Debugw("failed to write to status client", "client_id", c.id, "error", err)
				h.drop(c)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.drop(c)
				return
			}
		}
	}
}

// readPump discards inbound frames; reading is still required to
// process pong responses and detect the peer going away.
func (h *Hub) readPump(c *client) {
	defer h.drop(c)

	c.conn.SetReadLimit(maxInboundBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(h.cfg.PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(h.cfg.PongTimeout))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debugw("status client read failed", "client_id", c.id, "error", err)
			}
			return
		}
	}
}
