package models

import "time"

// TurnRole identifies the author of a conversation turn.
type TurnRole string

const (
	TurnRoleUser      TurnRole = "user"
	TurnRoleAssistant TurnRole = "assistant"
)

// ConversationTurn is one request/response entry in a conversation. Only
// assistant turns carry a state snapshot.
type ConversationTurn struct {
	ID        string         `json:"id"        validate:"required"`
	Role      TurnRole       `json:"role"      validate:"required,oneof=user assistant"`
	Content   string         `json:"content"`
	State     *WorkflowState `json:"state,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Conversation is the append-only turn log for one conversation id.
type Conversation struct {
	ID        string              `json:"id" validate:"required"`
	Turns     []ConversationTurn `json:"turns"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// CurrentState returns the state snapshot of the most recent assistant turn,
// or nil when no assistant turn has produced one yet.
func (c *Conversation) CurrentState() *WorkflowState {
	for i := len(c.Turns) - 1; i >= 0; i-- {
		if c.Turns[i].Role == TurnRoleAssistant && c.Turns[i].State != nil {
			return c.Turns[i].State
		}
	}

	return nil
}

// RecentTurns returns the last n turns, oldest first.
func (c *Conversation) RecentTurns(n int) []ConversationTurn {
	if n <= 0 || len(c.Turns) <= n {
		return c.Turns
	}

	return c.Turns[len(c.Turns)-n:]
}
