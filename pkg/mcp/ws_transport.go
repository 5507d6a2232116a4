package mcp

import (
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWS carries the same JSON-RPC envelope over a websocket, one request
// per message. Authentication happens before the upgrade; batching is a
// non-feature here since the socket itself already sequences messages.
func (t *HTTPTransport) handleWS(w http.ResponseWriter, r *http.Request) {
	if !t.authorized(r) {
		t.logWarn("auth_failed", "remote", r.RemoteAddr)
		writeEnvelope(w, http.StatusUnauthorized, errorResponse(nil, CodeAuth, "authentication failed"))
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		t.logWarn("ws_upgrade_failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()
	t.logInfo("ws_session_start", "remote", r.RemoteAddr)

	for {
		var req Request
		if err := conn.ReadJSON(&req); err != nil {
			t.logInfo("ws_session_end", "remote", r.RemoteAddr)
			return
		}
		if err := conn.WriteJSON(t.server.Handle(r.Context(), req)); err != nil {
			return
		}
	}
}
