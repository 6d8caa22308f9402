package clients

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Identity is a paired client as seen by the server.
type Identity struct {
	Addr      string
	SessionID string
	// ConnectedAt is when the client first paired. Nothing expires yet.
	ConnectedAt time.Time
}

type client struct {
	identity Identity
	control  *websocket.Conn
}

// Manager is the set of authorized clients keyed by address. An address is a
// member once it has connected; entries are never removed.
type Manager struct {
	mu      sync.RWMutex
	clients map[string]*client
	now     func() time.Time
}

func NewManager() *Manager {
	return &Manager{clients: make(map[string]*client), now: time.Now}
}

// Connect authorizes addr. Repeated calls return the identity from the first.
func (m *Manager) Connect(addr string) (id Identity, isNew bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.clients[addr]; ok {
		return c.identity, false
	}
	c := &client{identity: Identity{
		Addr:        addr,
		SessionID:   uuid.NewString(),
		ConnectedAt: m.now(),
	}}
	m.clients[addr] = c
	return c.identity, true
}

// Lookup reports whether addr is authorized.
func (m *Manager) Lookup(addr string) (Identity, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.clients[addr]
	if !ok {
		return Identity{}, false
	}
	return c.identity, true
}

// Len returns the number of authorized clients.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// SetControl attaches the websocket control channel for addr and returns the
// one it replaced, if any. ok is false when addr is not authorized.
func (m *Manager) SetControl(addr string, conn *websocket.Conn) (old *websocket.Conn, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clients[addr]
	if !ok {
		return nil, false
	}
	if c.control != nil && c.control != conn {
		old = c.control
	}
	c.control = conn
	return old, true
}

// RemoveControl detaches conn if it is still the current one for addr.
func (m *Manager) RemoveControl(addr string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clients[addr]
	if !ok {
		return
	}
	if c.control == conn {
		c.control = nil
	}
}

// Controls returns a snapshot of all attached control channels.
func (m *Manager) Controls() []*websocket.Conn {
	m.mu.RLock()
	defer m.mu.RUnlock()
	conns := make([]*websocket.Conn, 0, len(m.clients))
	for _, c := range m.clients {
		if c.control != nil {
			conns = append(conns, c.control)
		}
	}
	return conns
}
