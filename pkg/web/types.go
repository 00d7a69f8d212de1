package web

import (
	"time"

	"github.com/pipewise/pipewise/pkg/models"
)

// SendMessageRequest is the body of POST /conversations/:id/messages.
type SendMessageRequest struct {
	Content string `json:"content" validate:"required,min=1,max=4000"`
}

// TurnView is one conversation turn as exposed over HTTP. State snapshots
// are not repeated per turn; the current state rides on the conversation
// response.
type TurnView struct {
	ID        string          `json:"id"`
	Role      models.TurnRole `json:"role"`
	Content   string          `json:"content"`
	CreatedAt time.Time       `json:"created_at"`
}

// ConversationResponse is the body of GET /conversations/:id.
type ConversationResponse struct {
	ID               string               `json:"id"`
	Turns            []TurnView           `json:"turns"`
	Nodes            []*models.Node       `json:"nodes"`
	Connections      []*models.Connection `json:"connections"`
	WorkflowComplete bool                 `json:"workflow_complete"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

// NewConversationResponse projects a stored conversation into its HTTP shape.
func NewConversationResponse(conversation *models.Conversation) *ConversationResponse {
	turns := make([]TurnView, 0, len(conversation.Turns))
	for _, turn := range conversation.Turns {
		turns = append(turns, TurnView{
			ID:        turn.ID,
			Role:      turn.Role,
			Content:   turn.Content,
			CreatedAt: turn.CreatedAt,
		})
	}

	state := conversation.CurrentState()
	if state == nil {
		state = models.NewWorkflowState()
	}

	return &ConversationResponse{
		ID:               conversation.ID,
		Turns:            turns,
		Nodes:            state.Nodes,
		Connections:      state.Connections,
		WorkflowComplete: state.Complete,
		CreatedAt:        conversation.CreatedAt,
		UpdatedAt:        conversation.UpdatedAt,
	}
}
