package postgresql_test

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/pipewise/pipewise/pkg/models"
	"github.com/pipewise/pipewise/pkg/persistence"
	"github.com/pipewise/pipewise/pkg/persistence/postgresql"
)

var postgresContainer *postgres.PostgresContainer

func dropDb(ctx context.Context, t *testing.T, databaseURL string) {
	t.Helper()

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	for _, table := range []string{"conversations", "schema_migrations"} {
		_, err = db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE")
		require.NoError(t, err)
	}

	err = db.Close()
	require.NoError(t, err)
}

func setupTestDB(t *testing.T) (*postgresql.Persistence, context.Context, string) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)

	if postgresContainer == nil || !postgresContainer.IsRunning() {
		var err error

		postgresContainer, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("pipewise_test"),
			postgres.WithUsername("pipewise"),
			postgres.WithPassword("pipewise"),
			postgres.BasicWaitStrategies(),
		)
		require.NoError(t, err)
	}

	databaseURL, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	dropDb(ctx, t, databaseURL)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
	require.NoError(t, err)

	t.Cleanup(func() {
		dropDb(ctx, t, databaseURL)

		err = p.Close(ctx)
		require.NoError(t, err)

		cancel()
	})

	return p, ctx, databaseURL
}

func newTestConversation() *models.Conversation {
	now := time.Now().UTC().Truncate(time.Millisecond)
	state := models.NewWorkflowState()

	return &models.Conversation{
		ID: uuid.New().String(),
		Turns: []models.ConversationTurn{
			{
				ID:        uuid.New().String(),
				Role:      models.TurnRoleUser,
				Content:   "set up my pipeline",
				CreatedAt: now,
			},
			{
				ID:        uuid.New().String(),
				Role:      models.TurnRoleAssistant,
				Content:   "What is the URL of your store?",
				State:     state,
				CreatedAt: now.Add(time.Second),
			},
		},
		CreatedAt: now,
		UpdatedAt: now.Add(time.Second),
	}
}

func TestNewPersistence_Migrations(t *testing.T) {
	_, ctx, databaseURL := setupTestDB(t)

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	defer func() {
		err := db.Close()
		require.NoError(t, err)
	}()

	var exists bool

	err = db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT FROM information_schema.tables WHERE table_name = 'conversations')").Scan(&exists)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestPersistence_ConversationLifecycle(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	conversation := newTestConversation()

	err := p.SaveConversation(ctx, conversation)
	require.NoError(t, err)

	loaded, err := p.ConversationByID(ctx, conversation.ID)
	require.NoError(t, err)
	assert.Equal(t, conversation.ID, loaded.ID)
	require.Len(t, loaded.Turns, 2)
	require.NotNil(t, loaded.Turns[1].State)
	assert.Len(t, loaded.Turns[1].State.Nodes, 3)

	// Upsert with an extra turn
	conversation.Turns = append(conversation.Turns, models.ConversationTurn{
		ID:        uuid.New().String(),
		Role:      models.TurnRoleUser,
		Content:   "https://shop.example.com",
		CreatedAt: time.Now().UTC(),
	})
	conversation.UpdatedAt = time.Now().UTC()

	err = p.SaveConversation(ctx, conversation)
	require.NoError(t, err)

	loaded, err = p.ConversationByID(ctx, conversation.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Turns, 3)

	ids, err := p.ConversationIDs(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, conversation.ID)

	err = p.DeleteConversation(ctx, conversation.ID)
	require.NoError(t, err)

	_, err = p.ConversationByID(ctx, conversation.ID)
	assert.True(t, persistence.IsConversationNotFound(err))

	err = p.DeleteConversation(ctx, conversation.ID)
	assert.True(t, persistence.IsConversationNotFound(err))
}

func TestPersistence_HealthCheck(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	assert.NoError(t, p.HealthCheck(ctx))
}
