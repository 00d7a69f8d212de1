// Package postgresql provides PostgreSQL persistence for conversations.
package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/pipewise/pipewise/pkg/models"
	"github.com/pipewise/pipewise/pkg/persistence"
	"github.com/pipewise/pipewise/pkg/persistence/sqlbase"
)

// Persistence implements the persistence layer for PostgreSQL. The turn
// log is stored as a JSONB column; conversations are small (bounded turn
// counts) so a document column keeps reads and writes to one round trip.
type Persistence struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPersistence creates a new PostgreSQL persistence layer and runs
// migrations.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Persistence{
		db:     database,
		logger: logger,
	}, nil
}

func (p *Persistence) ConversationByID(ctx context.Context, id string) (*models.Conversation, error) {
	var (
		turnsJSON []byte
		createdAt time.Time
		updatedAt time.Time
	)

	query := `SELECT turns, created_at, updated_at FROM conversations WHERE id = $1`

	err := p.db.QueryRowContext(ctx, query, id).Scan(&turnsJSON, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewConversationError("GetByID", id, persistence.ErrConversationNotFound)
		}

		return nil, persistence.NewConversationError("GetByID", id, err)
	}

	var turns []models.ConversationTurn

	err = json.Unmarshal(turnsJSON, &turns)
	if err != nil {
		return nil, persistence.NewConversationError("GetByID", id, fmt.Errorf("failed to decode turns: %w", err))
	}

	return &models.Conversation{
		ID:        id,
		Turns:     turns,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

func (p *Persistence) SaveConversation(ctx context.Context, conversation *models.Conversation) error {
	if conversation == nil || conversation.ID == "" {
		return persistence.NewConversationError("Save", "", persistence.ErrInvalidConversation)
	}

	turnsJSON, err := json.Marshal(conversation.Turns)
	if err != nil {
		return persistence.NewConversationError("Save", conversation.ID, err)
	}

	query := `
		INSERT INTO conversations (id, turns, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			turns = EXCLUDED.turns,
			updated_at = EXCLUDED.updated_at
	`

	_, err = p.db.ExecContext(ctx, query, conversation.ID, turnsJSON, conversation.CreatedAt, conversation.UpdatedAt)
	if err != nil {
		return persistence.NewConversationError("Save", conversation.ID, err)
	}

	return nil
}

func (p *Persistence) DeleteConversation(ctx context.Context, id string) error {
	result, err := p.db.ExecContext(ctx, `DELETE FROM conversations WHERE id = $1`, id)
	if err != nil {
		return persistence.NewConversationError("Delete", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewConversationError("Delete", id, err)
	}

	if affected == 0 {
		return persistence.NewConversationError("Delete", id, persistence.ErrConversationNotFound)
	}

	return nil
}

func (p *Persistence) ConversationIDs(ctx context.Context) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT id FROM conversations ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversation ids: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string

	for rows.Next() {
		var id string

		err = rows.Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversation id: %w", err)
		}

		ids = append(ids, id)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to iterate conversation ids: %w", err)
	}

	return ids, nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}
