package chathub

import "sync"

// Presence answers "is this user currently connected" from live transport
// state. The in-memory implementation is process-local; running more than
// one instance requires swapping in a shared backing store, which this
// design does not attempt.
type Presence interface {
	// Connect adds a connection to the user's set, creating the set if absent.
	Connect(c Client)
	// Disconnect removes a connection; removing an unknown connection is a
	// no-op. The user entry is deleted once its set becomes empty.
	Disconnect(c Client)
	// IsOnline reports whether the user has at least one live connection.
	IsOnline(userID string) bool
	// OnlineUsersInRoom returns the IDs of users with at least one
	// connection subscribed to the room. Room membership is asked of the
	// connections themselves rather than stored here, so "connected" and
	// "subscribed" cannot diverge.
	OnlineUsersInRoom(roomID string) map[string]struct{}
	// ClientsInRoom returns every connection subscribed to the room.
	ClientsInRoom(roomID string) []Client
}

// MemoryPresence tracks per-user connection sets behind a RWMutex.
type MemoryPresence struct {
	mu    sync.RWMutex
	conns map[string]map[Client]struct{}
}

func NewMemoryPresence() *MemoryPresence {
	return &MemoryPresence{
		conns: make(map[string]map[Client]struct{}),
	}
}

func (p *MemoryPresence) Connect(c Client) {
	p.mu.Lock()
	defer p.mu.Unlock()

	userID := c.GetUserID()
	if p.conns[userID] == nil {
		p.conns[userID] = make(map[Client]struct{})
	}
	p.conns[userID][c] = struct{}{}
}

func (p *MemoryPresence) Disconnect(c Client) {
	p.mu.Lock()
	defer p.mu.Unlock()

	userID := c.GetUserID()
	if set, ok := p.conns[userID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(p.conns, userID)
		}
	}
}

func (p *MemoryPresence) IsOnline(userID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return len(p.conns[userID]) > 0
}

func (p *MemoryPresence) OnlineUsersInRoom(roomID string) map[string]struct{} {
	p.mu.RLock()
	defer p.mu.RUnlock()

	users := make(map[string]struct{})
	for userID, set := range p.conns {
		for c := range set {
			if c.InRoom(roomID) {
				users[userID] = struct{}{}
				break
			}
		}
	}
	return users
}

func (p *MemoryPresence) ClientsInRoom(roomID string) []Client {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var clients []Client
	for _, set := range p.conns {
		for c := range set {
			if c.InRoom(roomID) {
				clients = append(clients, c)
			}
		}
	}
	return clients
}
