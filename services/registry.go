package services

import (
	"sync"

	"github.com/openbingo/bingo-server/protocol"
)

// Conn is one live client connection as the orchestrator sees it. The
// WebSocket client implements it; tests substitute fakes.
type Conn interface {
	Send(msg protocol.Message)
}

type association struct {
	userID uint
	gameID uint
}

// Registry maps live connections to their current (user, game)
// association. The association is transient: it exists only for the
// lifetime of the connection.
type Registry struct {
	mu    sync.RWMutex
	conns map[Conn]association
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[Conn]association)}
}

// Add registers a connection with no association.
func (r *Registry) Add(c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[c] = association{}
}

// Remove drops the connection entirely.
func (r *Registry) Remove(c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, c)
}

// Associate binds the connection to a (user, game) pair.
func (r *Registry) Associate(c Conn, userID, gameID uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[c]; ok {
		r.conns[c] = association{userID: userID, gameID: gameID}
	}
}

// Clear resets the connection to unassociated.
func (r *Registry) Clear(c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[c]; ok {
		r.conns[c] = association{}
	}
}

// Association returns the connection's current (user, game) pair; ok is
// false when the connection is unknown or unassociated.
func (r *Registry) Association(c Conn) (userID, gameID uint, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, known := r.conns[c]
	if !known || a.gameID == 0 {
		return 0, 0, false
	}
	return a.userID, a.gameID, true
}

// BroadcastToGame sends msg to every connection associated with the
// game, skipping any in exclude.
func (r *Registry) BroadcastToGame(gameID uint, msg protocol.Message, exclude ...Conn) {
	for _, c := range r.gameConns(gameID, exclude) {
		c.Send(msg)
	}
}

// BroadcastAll sends msg to every live connection.
func (r *Registry) BroadcastAll(msg protocol.Message) {
	r.mu.RLock()
	conns := make([]Conn, 0, len(r.conns))
	for c := range r.conns {
		conns = append(conns, c)
	}
	r.mu.RUnlock()

	for _, c := range conns {
		c.Send(msg)
	}
}

func (r *Registry) gameConns(gameID uint, exclude []Conn) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []Conn{}
	for c, a := range r.conns {
		if a.gameID != gameID {
			continue
		}
		skip := false
		for _, e := range exclude {
			if c == e {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, c)
		}
	}
	return out
}
