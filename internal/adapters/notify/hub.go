package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/okian/leaguecast/internal/domain/model"
	"github.com/okian/leaguecast/pkg/logger"
	"github.com/okian/leaguecast/pkg/metrics"
)

const (
	broadcastBuffer = 256
	clientBuffer    = 64
	writeWait       = 10 * time.Second
	pongWait        = 60 * time.Second
	pingPeriod      = pongWait * 9 / 10
	maxReadSize     = 4096
)

type outbound struct {
	payload []byte
	leagues []string
}

// Hub keeps the set of websocket clients and broadcasts finished jobs to them.
// Run must be started before clients connect.
type Hub struct {
	clients    map[*client]struct{}
	broadcast  chan outbound
	register   chan *client
	unregister chan *client
	done       chan struct{}
	count      atomic.Int64
	upgrader   websocket.Upgrader
	logger     logger.Logger
	now        func() time.Time
}

// NewHub creates a hub. Cross origin checks are left to the HTTP layer.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*client]struct{}),
		broadcast:  make(chan outbound, broadcastBuffer),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger.Get().Named("ws-hub"),
		now:    time.Now,
	}
}

// Run owns the client set until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		for c := range h.clients {
			close(c.send)
			delete(h.clients, c)
		}
		h.setCount(0)
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.setCount(len(h.clients))
			h.logger.Debug(ctx, "client registered", logger.Int("clients", len(h.clients)))
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.setCount(len(h.clients))
			}
		case msg := <-h.broadcast:
			h.deliver(ctx, msg)
		}
	}
}

func (h *Hub) deliver(ctx context.Context, msg outbound) {
	for c := range h.clients {
		if !c.wants(msg.leagues) {
			continue
		}
		select {
		case c.send <- msg.payload:
		default:
			// slow consumer
			delete(h.clients, c)
			close(c.send)
			h.setCount(len(h.clients))
			h.logger.Warn(ctx, "dropped slow websocket client")
		}
	}
}

func (h *Hub) setCount(n int) {
	h.count.Store(int64(n))
	metrics.UpdateWebsocketClients(n)
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int { return int(h.count.Load()) }

// Notify broadcasts res to every subscribed client.
func (h *Hub) Notify(ctx context.Context, res model.JobResult) error { //nolint:gocritic // hugeParam
	payload, err := json.Marshal(newMessage(res, h.now()))
	if err != nil {
		metrics.RecordNotification("websocket", "error")
		return err
	}

	select {
	case h.broadcast <- outbound{payload: payload, leagues: leaguesOf(res)}:
		metrics.RecordNotification("websocket", "sent")
		return nil
	case <-h.done:
		metrics.RecordNotification("websocket", "error")
		return ErrHubClosed
	case <-ctx.Done():
		metrics.RecordNotification("websocket", "error")
		return ctx.Err()
	}
}

// leaguesOf returns the leagues a result covers.
func leaguesOf(res model.JobResult) []string { //nolint:gocritic // hugeParam
	if len(res.Job.Leagues) > 0 {
		return res.Job.Leagues
	}
	out := make([]string, 0, len(res.Metrics))
	for _, m := range res.Metrics {
		out = append(out, m.League)
	}
	return out
}

// ServeHTTP upgrades the request and attaches the connection to the hub.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn(r.Context(), "websocket upgrade failed", logger.Error(err))
		return
	}

	c := &client{hub: h, conn: conn, send: make(chan []byte, clientBuffer)}
	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// client is one websocket connection. An empty league filter receives every job.
type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	mu      sync.RWMutex
	leagues []string
}

type subscription struct {
	Type    string   `json:"type"`
	Leagues []string `json:"leagues"`
}

func (c *client) wants(leagues []string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.leagues) == 0 || len(leagues) == 0 {
		return true
	}
	for _, l := range leagues {
		if slices.Contains(c.leagues, l) {
			return true
		}
	}
	return false
}

func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxReadSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn(context.Background(), "websocket read error", logger.Error(err))
			}
			return
		}

		var sub subscription
		if err := json.Unmarshal(raw, &sub); err != nil {
			continue
		}
		c.mu.Lock()
		switch sub.Type {
		case "subscribe":
			c.leagues = sub.Leagues
		case "unsubscribe":
			c.leagues = nil
		}
		c.mu.Unlock()
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
