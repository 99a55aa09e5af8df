package handler

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/devaloi/meowww/internal/client"
	"github.com/devaloi/meowww/internal/hub"
	"github.com/devaloi/meowww/internal/store"
)

// Subprotocol is the websocket subprotocol clients must offer on the
// notification endpoint.
const Subprotocol = "meowww"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	Subprotocols:    []string{Subprotocol},
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Notify upgrades the request to a push-only notification channel for a
// room. The slot is registered before the upgrade completes; the first
// broadcast that reaches it waits for the handoff.
func Notify(h *hub.Hub, s store.Store, writeWait time.Duration, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "room")
		if !websocket.IsWebSocketUpgrade(r) {
			http.Error(w, "websocket upgrade required", http.StatusBadRequest)
			return
		}
		if !slices.Contains(websocket.Subprotocols(r), Subprotocol) {
			http.Error(w, "subprotocol "+Subprotocol+" required", http.StatusBadRequest)
			return
		}

		handoff := hub.NewHandoff()
		// Pruned at the next broadcast if we never resolve it.
		defer handoff.Fail()
		id := hub.Mutate(h, name, hub.AddConnection(handoff))

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Debug("ws.upgrade", "room", name, "slot", id, "err", err)
			return
		}

		c := client.New(conn, id, writeWait, logger)
		if !handoff.Resolve(c) {
			c.Close()
			return
		}
		go c.ReadPump()
		go c.PingPump()

		if s != nil {
			if err := s.RecordConnection(name, time.Now()); err != nil {
				logger.Warn("store.record_connection", "room", name, "err", err)
			}
		}
		alive := hub.Mutate(h, name, hub.Probe())
		logger.Debug("ws.connected", "room", name, "slot", id, "slots", alive)
	}
}
