package services

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// RefreshMessage is pushed to a user's connected clients when their data
// changes server-side; clients refetch and reconcile their local view.
type RefreshMessage struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

const msgPetsUpdated = "pets_updated"

// refreshConn pairs a connection with a write lock; gorilla/websocket allows
// at most one concurrent writer per connection.
type refreshConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *refreshConn) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// RefreshHub tracks the websocket connections of each user. A user may have
// several clients open at once (tabs, devices); all of them get every event.
type RefreshHub struct {
	mu          sync.RWMutex
	connections map[string]map[*websocket.Conn]*refreshConn
}

// NewRefreshHub creates a new refresh hub
func NewRefreshHub() *RefreshHub {
	return &RefreshHub{
		connections: make(map[string]map[*websocket.Conn]*refreshConn),
	}
}

// Register adds a connection for a user
func (h *RefreshHub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.connections[userID] == nil {
		h.connections[userID] = make(map[*websocket.Conn]*refreshConn)
	}
	h.connections[userID][conn] = &refreshConn{conn: conn}

	log.Info().Str("user_id", userID).Msg("Refresh connection registered")
}

// Unregister removes a connection for a user
func (h *RefreshHub) Unregister(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.connections[userID]; ok {
		if _, exists := conns[conn]; exists {
			conn.Close()
			delete(conns, conn)
			if len(conns) == 0 {
				delete(h.connections, userID)
			}
			log.Info().Str("user_id", userID).Msg("Refresh connection unregistered")
		}
	}
}

// NotifyPetsUpdated tells every client of the user that the pet list changed.
// Connections that fail to accept the write are dropped.
func (h *RefreshHub) NotifyPetsUpdated(userID string) {
	h.broadcast(userID, RefreshMessage{
		Type:      msgPetsUpdated,
		Timestamp: time.Now().UnixMilli(),
	})
}

// IsOnline reports whether the user has at least one connected client.
func (h *RefreshHub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[userID]) > 0
}

func (h *RefreshHub) broadcast(userID string, message RefreshMessage) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal refresh message")
		return
	}

	h.mu.RLock()
	conns := make([]*refreshConn, 0, len(h.connections[userID]))
	for _, rc := range h.connections[userID] {
		conns = append(conns, rc)
	}
	h.mu.RUnlock()

	for _, rc := range conns {
		if err := rc.write(data); err != nil {
			log.Warn().Err(err).Str("user_id", userID).Msg("Dropping dead refresh connection")
			h.Unregister(userID, rc.conn)
		}
	}
}
