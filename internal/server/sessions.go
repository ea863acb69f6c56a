package server

import (
	"sync"

	"github.com/grimaldi89/martechito/internal/chat"
)

// sessionRegistry keeps live chat sessions by ID. Sessions are in-memory
// only and vanish on restart.
type sessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*chat.Session
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{sessions: make(map[string]*chat.Session)}
}

// obtain returns the session with the given ID, or a fresh session when the
// ID is empty or unknown. Unknown IDs get a new session rather than an error
// so clients survive server restarts.
func (r *sessionRegistry) obtain(id string) *chat.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id != "" {
		if sess, ok := r.sessions[id]; ok {
			return sess
		}
	}
	sess := chat.NewSession()
	r.sessions[sess.ID] = sess
	return sess
}

// lookup returns the session with the given ID, or nil.
func (r *sessionRegistry) lookup(id string) *chat.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[id]
}
