package conversation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pipewise/pipewise/pkg/models"
	"github.com/pipewise/pipewise/pkg/persistence"
)

// Repository mediates all conversation storage access for the engine and
// the HTTP layer.
type Repository struct {
	persistence persistence.Persistence
}

func NewRepository(p persistence.Persistence) *Repository {
	return &Repository{
		persistence: p,
	}
}

func (r *Repository) HealthCheck(ctx context.Context) (string, bool) {
	if r.persistence == nil {
		return "Persistence layer not initialized", false
	}

	if err := r.persistence.HealthCheck(ctx); err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// FetchByID returns the stored conversation, or ErrConversationNotFound.
func (r *Repository) FetchByID(ctx context.Context, id string) (*models.Conversation, error) {
	return r.persistence.ConversationByID(ctx, id)
}

// FetchOrCreate returns the stored conversation, creating an empty one on
// first contact. New conversations are not persisted until their first turn
// is saved.
func (r *Repository) FetchOrCreate(ctx context.Context, id string) (*models.Conversation, error) {
	conversation, err := r.persistence.ConversationByID(ctx, id)
	if err == nil {
		return conversation, nil
	}

	if !persistence.IsConversationNotFound(err) {
		return nil, err
	}

	if id == "" {
		id = uuid.New().String()
	}

	now := time.Now().UTC()

	return &models.Conversation{
		ID:        id,
		Turns:     make([]models.ConversationTurn, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (r *Repository) Save(ctx context.Context, conversation *models.Conversation) error {
	conversation.UpdatedAt = time.Now().UTC()

	return r.persistence.SaveConversation(ctx, conversation)
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	return r.persistence.DeleteConversation(ctx, id)
}

func (r *Repository) ListIDs(ctx context.Context) ([]string, error) {
	return r.persistence.ConversationIDs(ctx)
}
