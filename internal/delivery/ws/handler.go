package ws

import (
	"net/http"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/gorilla/websocket"
)

// WSHandler subscribes the socket to ?roomID= and keeps it until the client
// goes away. Clients only listen; anything they send is discarded.
func WSHandler(hub *Hub, upgrader *websocket.Upgrader, log *logger.ZapLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := r.URL.Query().Get("roomID")
		if roomID == "" {
			http.Error(w, "missing roomID", http.StatusBadRequest)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Log(logger.LogEntry{
				Level:   "warn",
				Message: "[WS] upgrade failed",
				Fields:  map[string]any{"room": roomID},
				Error:   err,
			})
			return
		}

		hub.Register(roomID, conn)
		defer hub.Unregister(roomID, conn)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}
