package chat

import (
	"sync"

	"github.com/google/uuid"

	"github.com/grimaldi89/martechito/internal/retrieval"
)

// Session binds a conversation to an identifier and an optional retrieval
// strategy override. Turns within one session are processed one at a time;
// the engine holds the session lock for the duration of a turn.
type Session struct {
	ID string

	mu       sync.Mutex
	conv     *Conversation
	strategy *retrieval.Strategy
}

// NewSession returns a session with a fresh identifier and empty history.
func NewSession() *Session {
	return &Session{ID: uuid.NewString(), conv: NewConversation()}
}

// SetStrategy replaces the per-session retrieval strategy. A nil strategy
// restores the configured default.
func (s *Session) SetStrategy(st *retrieval.Strategy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.strategy = st
}

// Strategy returns the current override, nil when the session follows the
// configured default.
func (s *Session) Strategy() *retrieval.Strategy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.strategy
}

// History returns a copy of the full conversation, oldest first.
func (s *Session) History() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conv.Recent(s.conv.Len())
}
