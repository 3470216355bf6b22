package domain

import (
	"strings"
	"time"
)

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// IsValid returns true if the role is recognised.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAssistant
}

// promptLabel returns the prefix used when rendering history for a prompt.
func (r Role) promptLabel() string {
	if r == RoleUser {
		return "Human"
	}
	return "AI"
}

// Turn is a single message in a conversation.
type Turn struct {
	Role      Role      `json:"role" yaml:"role"`
	Text      string    `json:"text" yaml:"text"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Ledger is the append-only transcript of a session.
// Turns are never mutated or reordered after append.
// A Ledger is not safe for concurrent use; callers serialise access.
type Ledger struct {
	turns []Turn
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Append records a turn.
// User turns must carry text; assistant turns may be empty so that
// failures shown to the user stay on record.
func (l *Ledger) Append(role Role, text string) error {
	if !role.IsValid() {
		return ErrInvalidInput
	}
	if role == RoleUser && strings.TrimSpace(text) == "" {
		return ErrInvalidInput
	}
	l.turns = append(l.turns, Turn{Role: role, Text: text, CreatedAt: time.Now()})
	return nil
}

// AsPromptHistory renders the turns as "Human: ..." / "AI: ..." lines.
func (l *Ledger) AsPromptHistory() string {
	var b strings.Builder
	for _, t := range l.turns {
		b.WriteString(t.Role.promptLabel())
		b.WriteString(": ")
		b.WriteString(t.Text)
		b.WriteString("\n")
	}
	return b.String()
}

// AsDisplayList returns a copy of the turns in append order.
func (l *Ledger) AsDisplayList() []Turn {
	out := make([]Turn, len(l.turns))
	copy(out, l.turns)
	return out
}

// Len returns the number of turns.
func (l *Ledger) Len() int {
	return len(l.turns)
}

// Clear replaces the transcript with an empty one.
func (l *Ledger) Clear() {
	l.turns = nil
}
