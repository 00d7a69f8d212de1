// Package file provides file-based persistence for conversations. Each
// conversation is stored as one JSON document under the root directory.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pipewise/pipewise/pkg/models"
	"github.com/pipewise/pipewise/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface using the
// file system. Access is serialized per process; multi-process deployments
// should use the PostgreSQL or Redis backends instead.
type Persistence struct {
	root string
	mu   sync.RWMutex
}

// NewPersistence creates a new file persistence rooted at the given
// directory. Accepts a plain path or a file:// URL.
func NewPersistence(root string) (*Persistence, error) {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	err := os.MkdirAll(filepath.Join(cleanRoot, "conversations"), 0o755)
	if err != nil {
		return nil, fmt.Errorf("failed to create conversations directory: %w", err)
	}

	return &Persistence{root: cleanRoot}, nil
}

func (fp *Persistence) conversationPath(id string) string {
	return filepath.Join(fp.root, "conversations", id+".json")
}

// ConversationByID loads a conversation from its JSON file.
func (fp *Persistence) ConversationByID(_ context.Context, id string) (*models.Conversation, error) {
	fp.mu.RLock()
	defer fp.mu.RUnlock()

	data, err := os.ReadFile(fp.conversationPath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, persistence.NewConversationError("GetByID", id, persistence.ErrConversationNotFound)
		}

		return nil, persistence.NewConversationError("GetByID", id, err)
	}

	var conversation models.Conversation

	err = json.Unmarshal(data, &conversation)
	if err != nil {
		return nil, persistence.NewConversationError("GetByID", id, fmt.Errorf("failed to decode conversation file: %w", err))
	}

	return &conversation, nil
}

// SaveConversation writes the conversation to a temporary file and renames
// it into place so readers never observe a partial write.
func (fp *Persistence) SaveConversation(_ context.Context, conversation *models.Conversation) error {
	if conversation == nil || conversation.ID == "" {
		return persistence.NewConversationError("Save", "", persistence.ErrInvalidConversation)
	}

	fp.mu.Lock()
	defer fp.mu.Unlock()

	data, err := json.MarshalIndent(conversation, "", "  ")
	if err != nil {
		return persistence.NewConversationError("Save", conversation.ID, err)
	}

	target := fp.conversationPath(conversation.ID)
	tmp := target + ".tmp"

	err = os.WriteFile(tmp, data, 0o644)
	if err != nil {
		return persistence.NewConversationError("Save", conversation.ID, err)
	}

	err = os.Rename(tmp, target)
	if err != nil {
		return persistence.NewConversationError("Save", conversation.ID, err)
	}

	return nil
}

// DeleteConversation removes the conversation file.
func (fp *Persistence) DeleteConversation(_ context.Context, id string) error {
	fp.mu.Lock()
	defer fp.mu.Unlock()

	err := os.Remove(fp.conversationPath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return persistence.NewConversationError("Delete", id, persistence.ErrConversationNotFound)
		}

		return persistence.NewConversationError("Delete", id, err)
	}

	return nil
}

// ConversationIDs lists the IDs of all stored conversations.
func (fp *Persistence) ConversationIDs(_ context.Context) ([]string, error) {
	fp.mu.RLock()
	defer fp.mu.RUnlock()

	root := os.DirFS(filepath.Join(fp.root, "conversations"))

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list conversation files: %w", err)
	}

	ids := make([]string, 0, len(jsonFiles))
	for _, file := range jsonFiles {
		ids = append(ids, strings.TrimSuffix(file, ".json"))
	}

	return ids, nil
}

// HealthCheck verifies the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close performs any necessary cleanup. For file-based persistence, there
// is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}
