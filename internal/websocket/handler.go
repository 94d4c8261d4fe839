package websocket

import (
	"net/http"

	ws "github.com/coder/websocket"

	"github.com/dukerupert/schoolevents/internal/middleware"
)

// Handler upgrades connections to WebSocket and runs them as Hub clients.
// originPatterns lists extra hosts allowed to connect besides the page's own.
func Handler(hub *Hub, originPatterns []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			OriginPatterns: originPatterns,
		})
		if err != nil {
			hub.logger.Warn("accept", "remote", r.RemoteAddr, "request_id", middleware.RequestID(r.Context()), "error", err)
			return
		}
		defer conn.CloseNow()

		id := middleware.RequestID(r.Context())
		if id == "" {
			id = r.RemoteAddr
		}
		NewClient(hub, conn, id).Run(r.Context())
	}
}
