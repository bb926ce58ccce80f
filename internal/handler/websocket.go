package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/hearth/internal/auth"
	"github.com/dukerupert/hearth/internal/guard"
	"github.com/dukerupert/hearth/internal/realtime"

	ws "github.com/coder/websocket"
)

// WebSocket upgrades GET /ws/{household_id} and runs the connection as a hub
// client in that household's room. Membership is checked before the upgrade.
func WebSocket(hub *realtime.Hub, g *guard.Guard, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID, err := parseIDParam(r, "household_id")
		if err != nil {
			invalidID(w, "household_id")
			return
		}

		if _, err := g.ActiveMember(auth.UserID(r.Context()), householdID); err != nil {
			writeError(w, err)
			return
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: true, // Allow connections from any origin (household LAN)
		})
		if err != nil {
			logger.Error("websocket accept", "error", err)
			return
		}

		client := realtime.NewClient(hub, conn, householdID)
		client.Run(r.Context())
	}
}
