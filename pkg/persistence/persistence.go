// Package persistence defines the storage contract for conversations.
package persistence

import (
	"context"

	"github.com/pipewise/pipewise/pkg/models"
)

// Persistence is the storage interface every backend implements.
// Conversations are stored whole: the turn log is the source of truth and
// the workflow state is always derivable from the latest assistant turn.
type Persistence interface {
	// ConversationByID returns the conversation with the given ID, or
	// ErrConversationNotFound.
	ConversationByID(ctx context.Context, id string) (*models.Conversation, error)

	// SaveConversation creates or replaces a conversation.
	SaveConversation(ctx context.Context, conversation *models.Conversation) error

	// DeleteConversation removes a conversation. Deleting a missing
	// conversation returns ErrConversationNotFound.
	DeleteConversation(ctx context.Context, id string) error

	// ConversationIDs lists the IDs of all stored conversations.
	ConversationIDs(ctx context.Context) ([]string, error)

	// HealthCheck verifies the backend is reachable.
	HealthCheck(ctx context.Context) error

	// Close releases any resources held by the backend.
	Close(ctx context.Context) error
}
