package server

import (
	"encoding/json"
	"net/http"

	"github.com/coder/websocket"

	"github.com/wethinkt/go-folio/internal/events"
	"github.com/wethinkt/go-folio/internal/tuilog"
)

// handleEventsWS upgrades to WebSocket and streams reader events. The latest
// event is sent first so a new client starts from the current position.
// Browser clients that can't set headers authenticate with ?token=.
// GET /v1/events
func (s *Server) handleEventsWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // CORS handled by middleware
	})
	if err != nil {
		tuilog.Log.Error("WebSocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	// Subscribe before reading the backfill so nothing falls in between.
	ch, unsub := s.hub.Subscribe()
	defer unsub()

	ctx := conn.CloseRead(r.Context())

	write := func(ev events.Event) bool {
		data, err := json.Marshal(ev)
		if err != nil {
			return true
		}
		if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
			tuilog.Log.Debug("WS write failed", "error", err)
			return false
		}
		return true
	}

	if ev, ok := s.hub.Last(); ok {
		if !write(ev) {
			return
		}
	}

	wsConnectionsActive.Inc()
	defer wsConnectionsActive.Dec()
	tuilog.Log.Info("WebSocket client connected", "remote", r.RemoteAddr)

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "server shutting down")
			return
		case ev, ok := <-ch:
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "reader closed")
				return
			}
			if !write(ev) {
				return
			}
		}
	}
}
