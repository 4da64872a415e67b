// Package chat holds the conversation transcript and the turn-taking loop.
package chat

import (
	"fmt"
	"strings"
)

// Role is the author of a Turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Turn is one message unit in the transcript.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// IsError reports whether the Turn records a failed completion request.
func (t Turn) IsError() bool {
	return t.Role == RoleAssistant && strings.HasPrefix(t.Content, errorPrefix)
}

// Transcript is an append-only, chronologically ordered list of Turns.
// It is not safe for concurrent use; Session guards it.
type Transcript struct {
	turns []Turn
}

// Append adds a Turn at the end.
func (t *Transcript) Append(turn Turn) error {
	if !turn.Role.Valid() {
		return fmt.Errorf("invalid role %q", turn.Role)
	}
	t.turns = append(t.turns, turn)
	return nil
}

// Turns returns a copy of the transcript in display order.
func (t *Transcript) Turns() []Turn {
	out := make([]Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

// Len returns the number of Turns.
func (t *Transcript) Len() int { return len(t.turns) }

// Clear drops every Turn.
func (t *Transcript) Clear() { t.turns = nil }

// Alternates reports whether roles go user, assistant, user, ... starting
// with user. An odd length (a user Turn still awaiting its reply) is allowed.
func Alternates(turns []Turn) bool {
	for i, turn := range turns {
		want := RoleUser
		if i%2 == 1 {
			want = RoleAssistant
		}
		if turn.Role != want {
			return false
		}
	}
	return true
}
