package v1

import (
	"log"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/oksmith/ai-rap-battle/internal/hub"
)

// Observer connection tuning.
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 512
)

// WatchBattle upgrades the connection and attaches it as a read-only
// observer: finalized verses are replayed first, then live events follow
// as the active stream produces them. Watching never triggers generation.
// GET /v1/battles/:id/watch
func (h *Handler) WatchBattle(c echo.Context) error {
	battle, err := h.service.Battle(c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}

	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Printf("WARN: websocket upgrade failed for battle %s: %v", battle.ID, err)
		return err
	}

	conn := h.observers.Attach(ws, battle)

	go h.writePump(conn)
	go h.readPump(conn)

	return nil
}

// readPump discards client input and detaches the observer when the
// connection drops. Observers never send battle commands.
func (h *Handler) readPump(conn *hub.Connection) {
	defer func() {
		h.observers.Detach(conn)
		conn.Conn.Close()
	}()

	conn.Conn.SetReadLimit(maxMessageSize)
	conn.Conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.Conn.SetPongHandler(func(string) error {
		conn.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WARN: observer %s read error: %v", conn.ID, err)
			}
			return
		}
	}
}

// writePump drains the observer's send queue and keeps the connection
// alive with pings.
func (h *Handler) writePump(conn *hub.Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			conn.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				conn.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			conn.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
