package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/gorilla/websocket"
)

const defaultWriteWait = 10 * time.Second

type Hub struct {
	mu    sync.Mutex
	rooms map[string]map[*websocket.Conn]bool

	sendMu    sync.Mutex
	writeWait time.Duration

	log *logger.ZapLogger
}

func NewHub(log *logger.ZapLogger) *Hub {
	return &Hub{
		rooms:     make(map[string]map[*websocket.Conn]bool),
		writeWait: defaultWriteWait,
		log:       log,
	}
}

func (h *Hub) Register(roomID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[*websocket.Conn]bool)
	}
	h.rooms[roomID][conn] = true

	h.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "[hub] register",
		Fields:  map[string]any{"room": roomID, "conns": len(h.rooms[roomID])},
	})
}

func (h *Hub) Unregister(roomID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.rooms[roomID]
	if !ok {
		return
	}

	if _, ok := conns[conn]; ok {
		delete(conns, conn)
		conn.Close()
	}
	if len(conns) == 0 {
		delete(h.rooms, roomID)
	}

	h.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "[hub] unregister",
		Fields:  map[string]any{"room": roomID, "conns": len(conns)},
	})
}

// Conns is the number of live connections in a room.
func (h *Hub) Conns(roomID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[roomID])
}

// SendToRoom never holds the hub lock while writing. A connection that cannot
// take a message within writeWait is dropped from its room.
func (h *Hub) SendToRoom(roomID string, msg []byte) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.rooms[roomID]))
	for conn := range h.rooms[roomID] {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	if len(conns) == 0 {
		h.log.Log(logger.LogEntry{
			Level:   "debug",
			Message: "[hub] send skipped, no active connections",
			Fields:  map[string]any{"room": roomID},
		})
		return
	}

	// one writer per connection
	h.sendMu.Lock()
	defer h.sendMu.Unlock()

	for _, conn := range conns {
		_ = conn.SetWriteDeadline(time.Now().Add(h.writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.log.Log(logger.LogEntry{
				Level:   "warn",
				Message: "[hub] send failed, dropping connection",
				Fields:  map[string]any{"room": roomID},
				Error:   err,
			})
			h.Unregister(roomID, conn)
		}
	}
}

// NewUpgrader accepts only the configured browser origin.
func NewUpgrader(origin string) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			o := r.Header.Get("Origin")
			return o == "" || o == origin
		},
	}
}
