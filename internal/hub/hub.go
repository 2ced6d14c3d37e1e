// Package hub is the connection registry: one entry per connected player,
// each owning a write pump and a bounded outbound queue. It implements the
// sender interface matches broadcast through, insulating the simulation from
// socket speed.
package hub

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 5 * time.Second

// Conn wraps one player's websocket with a bounded send queue. Snapshots are
// latest-wins, so when the queue fills the oldest unsent frame is dropped in
// favour of the newest.
type Conn struct {
	ws        *websocket.Conn
	send      chan []byte
	closed    chan struct{}
	closeOnce sync.Once
}

func newConn(ws *websocket.Conn, queueSize int) *Conn {
	return &Conn{
		ws:     ws,
		send:   make(chan []byte, queueSize),
		closed: make(chan struct{}),
	}
}

// enqueue never blocks the caller. On a full queue it evicts the oldest
// pending frame; the tick loop must not wait on network I/O.
func (c *Conn) enqueue(frame []byte) bool {
	select {
	case c.send <- frame:
		return true
	default:
	}
	select {
	case <-c.send:
	default:
	}
	select {
	case c.send <- frame:
		return false
	default:
		return false
	}
}

// writePump drains the send queue onto the socket until the connection
// closes. One goroutine per connection.
func (c *Conn) writePump() {
	defer c.ws.Close()
	for {
		select {
		case <-c.closed:
			return
		case frame := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		}
	}
}

// Close shuts the write pump and the underlying socket. Idempotent.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		_ = c.ws.Close()
	})
}

// Hub maps player IDs to live connections. It is one of the two explicitly
// shared structures in the process (the other is the matchmaking queue) and
// is guarded by a single RWMutex.
type Hub struct {
	queueSize int
	logger    *zap.SugaredLogger

	mu    sync.RWMutex
	conns map[string]*Conn

	framesSent    atomic.Int64
	framesDropped atomic.Int64
}

// New builds an empty registry.
func New(queueSize int, logger *zap.SugaredLogger) *Hub {
	return &Hub{
		queueSize: queueSize,
		logger:    logger,
		conns:     make(map[string]*Conn),
	}
}

// Register binds a connection to a player ID, replacing and closing any
// previous connection for the same player.
func (h *Hub) Register(playerID string, ws *websocket.Conn) *Conn {
	conn := newConn(ws, h.queueSize)

	h.mu.Lock()
	previous := h.conns[playerID]
	h.conns[playerID] = conn
	h.mu.Unlock()

	if previous != nil {
		previous.Close()
	}
	go conn.writePump()
	return conn
}

// Unregister removes the mapping if it still points at the given connection;
// a replacement registered in the meantime stays.
func (h *Hub) Unregister(playerID string, conn *Conn) {
	h.mu.Lock()
	if current, ok := h.conns[playerID]; ok && current == conn {
		delete(h.conns, playerID)
	}
	h.mu.Unlock()
	conn.Close()
}

// Send queues a frame for one player, dropping narrowly rather than
// blocking. Implements the game sender contract.
func (h *Hub) Send(playerID string, frame []byte) {
	h.mu.RLock()
	conn, ok := h.conns[playerID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	if conn.enqueue(frame) {
		h.framesSent.Add(1)
	} else {
		h.framesDropped.Add(1)
	}
}

// Count reports connected players.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Snapshot exposes delivery counters for diagnostics.
func (h *Hub) Snapshot() map[string]any {
	return map[string]any{
		"connections":    h.Count(),
		"frames_sent":    h.framesSent.Load(),
		"frames_dropped": h.framesDropped.Load(),
	}
}
