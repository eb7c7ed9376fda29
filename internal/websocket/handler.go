package websocket

import (
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"

	"homeboard/internal/auth"
)

// HandleWebSocket upgrades connections to WebSocket and runs them as Hub
// clients scoped to the authenticated member's home. Must sit behind the
// auth middleware.
func HandleWebSocket(hub *Hub, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		homeID := auth.HomeID(r.Context())
		if homeID == 0 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		conn, err := ws.Accept(w, r, nil)
		if err != nil {
			logger.Warn("websocket accept", "error", err)
			return
		}

		client := NewClient(hub, conn, homeID)
		client.Run(r.Context())
	}
}
