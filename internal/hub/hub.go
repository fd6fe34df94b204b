// Package hub fans battle stream events out to WebSocket observers.
package hub

import (
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/oksmith/ai-rap-battle/internal/domain"
)

// sendBuffer sizes each observer's outbound queue. An observer that lets
// the buffer fill is dropped rather than allowed to stall the battle.
const sendBuffer = 256

// Connection is one read-only observer attached to a battle.
type Connection struct {
	ID       string
	BattleID string
	Conn     *websocket.Conn
	Send     chan []byte

	// lastFinal is the highest verse index delivered as complete, -1
	// before any. Verse events at or below it are duplicates from the
	// replay/live seam and must not be delivered again.
	lastFinal int
	sentDone  bool
	mu        sync.Mutex
}

// Hub tracks observer connections per battle. Observers never mutate
// battle state; they only receive the same wire lines the stream writer
// sees.
type Hub struct {
	mu      sync.RWMutex
	battles map[string]map[*Connection]bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		battles: make(map[string]map[*Connection]bool),
	}
}

// Attach registers ws as an observer of battle and queues the replay:
// every finalized verse as a complete line, plus the terminal marker when
// the battle is already over. The snapshot and the registration happen
// under one lock, so any concurrent live event is either covered by the
// replay or delivered afterwards, never both and never neither.
func (h *Hub) Attach(ws *websocket.Conn, battle *domain.Battle) *Connection {
	conn := &Connection{
		ID:        "obs_" + uuid.New().String()[:8],
		BattleID:  battle.ID,
		Conn:      ws,
		Send:      make(chan []byte, sendBuffer),
		lastFinal: -1,
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	snap := battle.Snapshot()
	for i, v := range snap.Verses {
		h.deliver(conn, domain.StreamEvent{
			Type:   domain.StreamEventVerseComplete,
			Rapper: v.Rapper,
			Verse:  v.Content,
			Round:  v.Round,
			Seq:    i,
		})
	}
	if snap.Complete {
		h.deliver(conn, domain.StreamEvent{Type: domain.StreamEventBattleComplete, Seq: -1})
	}

	if h.battles[battle.ID] == nil {
		h.battles[battle.ID] = make(map[*Connection]bool)
	}
	h.battles[battle.ID][conn] = true

	log.Printf("INFO: observer %s attached to battle %s (%d verses replayed)", conn.ID, battle.ID, len(snap.Verses))
	return conn
}

// Detach removes conn from the hub and closes its send channel. Safe to
// call more than once; only the first call closes the channel.
func (h *Hub) Detach(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.battles[conn.BattleID]
	if !ok || !conns[conn] {
		return
	}
	delete(conns, conn)
	if len(conns) == 0 {
		delete(h.battles, conn.BattleID)
	}
	close(conn.Send)

	log.Printf("INFO: observer %s detached from battle %s", conn.ID, conn.BattleID)
}

// BroadcastEvent sends ev to every observer of battleID. It implements the
// orchestrator's broadcaster hook.
func (h *Hub) BroadcastEvent(battleID string, ev domain.StreamEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn := range h.battles[battleID] {
		h.deliver(conn, ev)
	}
}

// ObserverCount returns the number of observers attached to battleID.
func (h *Hub) ObserverCount(battleID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.battles[battleID])
}

// deliver applies the duplicate filter and enqueues the wire line without
// blocking. Callers hold h.mu, which keeps the send channel open for the
// duration: Detach cannot close it until the lock is released.
func (h *Hub) deliver(conn *Connection, ev domain.StreamEvent) {
	if !conn.admit(ev) {
		return
	}

	data, err := ev.MarshalWire()
	if err != nil {
		log.Printf("WARN: dropping unmarshalable stream event for battle %s: %v", conn.BattleID, err)
		return
	}

	select {
	case conn.Send <- data:
	default:
		log.Printf("WARN: observer %s buffer full, dropping connection", conn.ID)
		go h.Detach(conn)
	}
}

// admit reports whether ev should reach this observer, advancing the
// duplicate watermark as verses finalize. Error lines always pass.
func (c *Connection) admit(ev domain.StreamEvent) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev.Type {
	case domain.StreamEventTurnAnnounce, domain.StreamEventFragment:
		if ev.Seq <= c.lastFinal {
			return false
		}
	case domain.StreamEventVerseComplete:
		if ev.Seq <= c.lastFinal {
			return false
		}
		c.lastFinal = ev.Seq
	case domain.StreamEventBattleComplete:
		if c.sentDone {
			return false
		}
		c.sentDone = true
	}
	return true
}
