package websocket

import (
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"

	"github.com/dukerupert/mercando/internal/auth"
	"github.com/dukerupert/mercando/internal/metrics"
)

// HandleWebSocket upgrades authenticated requests and streams the user's
// live snapshots. It must run behind the session middleware.
func HandleWebSocket(hub *Hub, feed Feed, m *metrics.Metrics, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.UserID(r.Context())
		if userID == 0 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		conn, err := ws.Accept(w, r, nil)
		if err != nil {
			logger.Error("websocket accept", "user_id", userID, "error", err)
			return
		}
		defer conn.CloseNow()

		m.LiveSubscriberConnected()
		defer m.LiveSubscriberDisconnected()

		logger.Debug("websocket connected", "user_id", userID)
		NewClient(hub, conn, userID).Run(r.Context(), feed)
		logger.Debug("websocket disconnected", "user_id", userID)
	}
}
