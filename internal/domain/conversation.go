package domain

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type SessionState string

const (
	StateIdle                 SessionState = "idle"
	StateAwaitingConfirmation SessionState = "awaiting_confirmation"
)

type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Suggestion is an unconfirmed booking proposal produced by the assistant.
type Suggestion struct {
	Title    string    `json:"title"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Resource string    `json:"resource,omitempty"`
}

// Conversation is one exchange with the assistant. At most one suggestion
// is pending at a time.
type Conversation struct {
	ID        string      `json:"id"`
	History   []Turn      `json:"history"`
	Pending   *Suggestion `json:"pending,omitempty"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func (c Conversation) State() SessionState {
	if c.Pending != nil {
		return StateAwaitingConfirmation
	}
	return StateIdle
}

func (c *Conversation) Append(role Role, text string) {
	c.History = append(c.History, Turn{Role: role, Text: text})
}

// Clone returns a copy that shares no slices or pointers with c.
func (c Conversation) Clone() Conversation {
	out := c
	out.History = append([]Turn(nil), c.History...)
	if c.Pending != nil {
		p := *c.Pending
		out.Pending = &p
	}
	return out
}
