package realtime

import (
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Temirlan472/Learning_Tracker/pkg/logger"
)

// Conn is the write side of one live client connection.
// *websocket.Conn satisfies it; tests plug in fakes.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Frame is the JSON envelope for every server->client event.
type Frame struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// StatusPayload is broadcast on every presence change.
type StatusPayload struct {
	ActiveCount int       `json:"activeCount"`
	Timestamp   time.Time `json:"timestamp"`
}

// Hub tracks live connections and routes events to them. A connection
// starts anonymous (Connect), becomes a presence entry once the client
// identifies itself (Register), and is removed on Disconnect.
//
// Presence is a set of connections per user, so a second device does not
// silently evict the first. singleSession restores the historical
// last-login-wins behavior.
//
// Delivery is at-most-once: pushes to users with no live connection are
// dropped, and a failed write evicts the dead connection instead of
// surfacing an error to the caller.
type Hub struct {
	mu            sync.Mutex
	conns         map[string]Conn            // connID -> connection
	users         map[string]map[string]bool // userID -> set of connIDs
	owner         map[string]string          // connID -> userID
	singleSession bool
	nextID        uint64
}

func NewHub(singleSession bool) *Hub {
	return &Hub{
		conns:         make(map[string]Conn),
		users:         make(map[string]map[string]bool),
		owner:         make(map[string]string),
		singleSession: singleSession,
	}
}

// Connect tracks a new, not-yet-identified connection and returns its id.
func (h *Hub) Connect(conn Conn) string {
	connID := strconv.FormatUint(atomic.AddUint64(&h.nextID, 1), 10)

	h.mu.Lock()
	h.conns[connID] = conn
	h.mu.Unlock()

	return connID
}

// Register binds a connection to a user identity and broadcasts the new
// active-user count. In single-session mode any prior connections of the
// same user lose their presence entry (they stay connected, unidentified).
func (h *Hub) Register(userID, connID string) {
	h.mu.Lock()

	if _, ok := h.conns[connID]; !ok {
		h.mu.Unlock()
		return
	}

	// A connection claiming a new identity gives up its old one first.
	if prev, ok := h.owner[connID]; ok && prev != userID {
		delete(h.users[prev], connID)
		if len(h.users[prev]) == 0 {
			delete(h.users, prev)
		}
	}

	if h.singleSession {
		for old := range h.users[userID] {
			delete(h.owner, old)
		}
		delete(h.users, userID)
	}

	if h.users[userID] == nil {
		h.users[userID] = make(map[string]bool)
	}
	h.users[userID][connID] = true
	h.owner[connID] = userID

	logger.Log.WithFields(map[string]interface{}{
		"user_id":      userID,
		"active_users": len(h.users),
	}).Info("User registered on hub")

	h.broadcastStatusLocked()
	h.mu.Unlock()
}

// Unregister drops the presence entry for a connection and broadcasts the
// new count. Unknown connection ids are a no-op.
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()

	userID, ok := h.owner[connID]
	if !ok {
		h.mu.Unlock()
		return
	}

	delete(h.owner, connID)
	delete(h.users[userID], connID)
	if len(h.users[userID]) == 0 {
		delete(h.users, userID)
	}

	logger.Log.WithFields(map[string]interface{}{
		"user_id":      userID,
		"active_users": len(h.users),
	}).Info("User unregistered from hub")

	h.broadcastStatusLocked()
	h.mu.Unlock()
}

// Disconnect removes the connection entirely, unregistering it first.
func (h *Hub) Disconnect(connID string) {
	h.Unregister(connID)

	h.mu.Lock()
	delete(h.conns, connID)
	h.mu.Unlock()
}

// ActiveCount returns the number of distinct identified users.
func (h *Hub) ActiveCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.users)
}

// PushToUser sends an event to every live connection of one user.
// Silently a no-op when the user has none.
func (h *Hub) PushToUser(userID, event string, payload interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()

	frame := Frame{Event: event, Data: payload}
	for connID := range h.users[userID] {
		if conn, ok := h.conns[connID]; ok {
			h.writeLocked(connID, conn, frame)
		}
	}
}

// Broadcast sends an event to every live connection, identified or not.
func (h *Hub) Broadcast(event string, payload interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.broadcastLocked(Frame{Event: event, Data: payload})
}

func (h *Hub) broadcastStatusLocked() {
	h.broadcastLocked(Frame{
		Event: "users:status",
		Data:  StatusPayload{ActiveCount: len(h.users), Timestamp: time.Now()},
	})
}

func (h *Hub) broadcastLocked(frame Frame) {
	for connID, conn := range h.conns {
		h.writeLocked(connID, conn, frame)
	}
}

// writeLocked writes one frame, evicting the connection on failure.
// Callers must hold mu; eviction deletes from the maps being iterated,
// which is safe in Go.
func (h *Hub) writeLocked(connID string, conn Conn, frame Frame) {
	if err := conn.WriteJSON(frame); err != nil {
		logger.Log.WithError(err).WithField("conn_id", connID).Warn("Dropping dead connection")
		conn.Close()
		delete(h.conns, connID)
		if userID, ok := h.owner[connID]; ok {
			delete(h.owner, connID)
			delete(h.users[userID], connID)
			if len(h.users[userID]) == 0 {
				delete(h.users, userID)
			}
		}
	}
}
