// Package redis provides Redis-backed persistence for conversations.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/pipewise/pipewise/pkg/models"
	"github.com/pipewise/pipewise/pkg/persistence"
)

const keyPrefix = "pipewise:conversation:"

// Persistence implements the persistence.Persistence interface on top of
// Redis. Each conversation is a single JSON value keyed by its ID.
type Persistence struct {
	client goredis.UniversalClient
}

// NewPersistence creates a Redis persistence from a redis:// URL.
func NewPersistence(ctx context.Context, redisURL string) (*Persistence, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := goredis.NewClient(opts)

	err = client.Ping(ctx).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &Persistence{client: client}, nil
}

func conversationKey(id string) string {
	return keyPrefix + id
}

func (rp *Persistence) ConversationByID(ctx context.Context, id string) (*models.Conversation, error) {
	data, err := rp.client.Get(ctx, conversationKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, persistence.NewConversationError("GetByID", id, persistence.ErrConversationNotFound)
		}

		return nil, persistence.NewConversationError("GetByID", id, err)
	}

	var conversation models.Conversation

	err = json.Unmarshal(data, &conversation)
	if err != nil {
		return nil, persistence.NewConversationError("GetByID", id, fmt.Errorf("failed to decode conversation: %w", err))
	}

	return &conversation, nil
}

func (rp *Persistence) SaveConversation(ctx context.Context, conversation *models.Conversation) error {
	if conversation == nil || conversation.ID == "" {
		return persistence.NewConversationError("Save", "", persistence.ErrInvalidConversation)
	}

	data, err := json.Marshal(conversation)
	if err != nil {
		return persistence.NewConversationError("Save", conversation.ID, err)
	}

	err = rp.client.Set(ctx, conversationKey(conversation.ID), data, 0).Err()
	if err != nil {
		return persistence.NewConversationError("Save", conversation.ID, err)
	}

	return nil
}

func (rp *Persistence) DeleteConversation(ctx context.Context, id string) error {
	deleted, err := rp.client.Del(ctx, conversationKey(id)).Result()
	if err != nil {
		return persistence.NewConversationError("Delete", id, err)
	}

	if deleted == 0 {
		return persistence.NewConversationError("Delete", id, persistence.ErrConversationNotFound)
	}

	return nil
}

func (rp *Persistence) ConversationIDs(ctx context.Context) ([]string, error) {
	var (
		ids    []string
		cursor uint64
	)

	for {
		keys, next, err := rp.client.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversation keys: %w", err)
		}

		for _, key := range keys {
			ids = append(ids, strings.TrimPrefix(key, keyPrefix))
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return ids, nil
}

func (rp *Persistence) HealthCheck(ctx context.Context) error {
	err := rp.client.Ping(ctx).Err()
	if err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	return nil
}

func (rp *Persistence) Close(_ context.Context) error {
	return rp.client.Close()
}
