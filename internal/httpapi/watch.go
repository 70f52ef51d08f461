package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	// Single-origin board UI; no cross-origin deployment to guard
	// against in this module.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWatch implements GET /watch/:pid. A plain HTTP client gets
// long-poll behavior: the request blocks until the next change event,
// then returns 200 with the snapshot. A client that
// sends the WebSocket upgrade headers instead gets a push per change
// event for as long as the connection stays alive and the board it
// started on is still the current one.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	pid := chi.URLParam(r, "pid")
	if !validatePlayerID(w, pid) {
		return
	}

	if isWebSocketUpgrade(r) {
		s.serveWatchWebSocket(w, r, pid)
		return
	}

	b, _ := s.current()
	snap, err := b.Watch(r.Context(), pid)
	if err != nil {
		// Context canceled (client disconnected) — nothing to write.
		return
	}
	writeSnapshot(w, snap)
}

func isWebSocketUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}

// serveWatchWebSocket pushes one snapshot per board change event until
// the connection closes or the board is reset out from under it. A
// reset is noticed only when the next change event on the board the
// connection started on arrives; the reset itself does not wake it.
func (s *Server) serveWatchWebSocket(w http.ResponseWriter, r *http.Request, pid string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warnf("watch upgrade failed for %s: %v", pid, err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	b, generation := s.current()

	initial := b.Look(pid)
	if err := conn.WriteMessage(websocket.TextMessage, []byte(initial)); err != nil {
		return
	}

	for {
		snap, err := b.Watch(ctx, pid)
		if err != nil {
			return
		}
		if _, curGen := s.current(); curGen != generation {
			// The board was reset while we were watching the old
			// one; stop rather than keep serving stale updates.
			return
		}
		if err := conn.WriteMessage(websocket.TextMessage, []byte(snap)); err != nil {
			return
		}
	}
}
