// Package presence tracks which live session each user is reachable at.
package presence

import (
	"sync"

	"github.com/dmitrijs2005/gophchat/internal/server/relay"
)

// Registry maps a user id to at most one session. It is process-local and
// safe for concurrent use; every operation is atomic and never blocks on I/O.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]relay.Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]relay.Session)}
}

// Register makes userID reachable at s, replacing any earlier session for
// that user. The replaced session is not closed.
func (r *Registry) Register(userID string, s relay.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[userID] = s
}

// Lookup returns the session registered for userID.
func (r *Registry) Lookup(userID string) (relay.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[userID]
	return s, ok
}

// Unregister drops every entry pointing at s. Matching is by handle, not by
// user, so a session that was already replaced removes nothing. Calling it
// again is a no-op.
func (r *Registry) Unregister(s relay.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for userID, cur := range r.sessions {
		if cur == s {
			delete(r.sessions, userID)
		}
	}
}

// Len reports how many users are online.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}
