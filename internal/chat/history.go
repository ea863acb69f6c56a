package chat

import (
	"time"

	"github.com/grimaldi89/martechito/internal/llm"
)

// WindowSize is the number of recent turns handed to the reformulator,
// independent of how much history a front end chooses to display.
const WindowSize = 4

// Turn is one utterance in a conversation.
type Turn struct {
	Role    llm.Role
	Content string
	At      time.Time
}

// Conversation is the append-only turn history of one session. Turns are
// never edited or removed; the recent window is a derived view.
type Conversation struct {
	turns []Turn
}

// NewConversation returns an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{}
}

// Append records a turn at the end of the history.
func (c *Conversation) Append(role llm.Role, content string) {
	c.turns = append(c.turns, Turn{Role: role, Content: content, At: time.Now()})
}

// Recent returns the last n turns, oldest first. Fewer are returned when the
// history is shorter.
func (c *Conversation) Recent(n int) []Turn {
	if n <= 0 {
		return nil
	}
	start := len(c.turns) - n
	if start < 0 {
		start = 0
	}
	out := make([]Turn, len(c.turns)-start)
	copy(out, c.turns[start:])
	return out
}

// Len returns the total number of turns.
func (c *Conversation) Len() int { return len(c.turns) }
