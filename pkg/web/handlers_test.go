package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipewise/pipewise/pkg/conversation"
	"github.com/pipewise/pipewise/pkg/models"
	"github.com/pipewise/pipewise/pkg/persistence/file"
	"github.com/pipewise/pipewise/pkg/web"
)

type stubEngine struct {
	messages []*models.Message
	err      error
	gotID    string
	gotText  string
}

func (e *stubEngine) HandleMessage(_ context.Context, conversationID, content string) ([]*models.Message, error) {
	e.gotID = conversationID
	e.gotText = content

	if e.err != nil {
		return nil, e.err
	}

	return e.messages, nil
}

type stubModelChecker struct {
	err error
}

func (m *stubModelChecker) Validate(_ context.Context) error {
	return m.err
}

func setupTestApp(t *testing.T, engine web.Engine) (*fiber.App, *conversation.Repository) {
	t.Helper()

	fp, err := file.NewPersistence(t.TempDir())
	require.NoError(t, err)

	repository := conversation.NewRepository(fp)
	validate := validator.New(validator.WithRequiredStructEnabled())
	handlers := web.NewAPIHandlers(engine, repository, &stubModelChecker{}, validate)

	app := fiber.New()

	conversations := app.Group("/conversations")
	conversations.Get("/", handlers.ListConversations)
	conversations.Get("/:id", handlers.GetConversation)
	conversations.Post("/:id/messages", handlers.PostMessage)
	conversations.Delete("/:id", handlers.DeleteConversation)

	app.Get("/health", handlers.HealthCheck)

	return app, repository
}

func storedConversation(t *testing.T, repository *conversation.Repository, id string) {
	t.Helper()

	now := time.Now().UTC()
	state := models.NewWorkflowState()

	err := repository.Save(t.Context(), &models.Conversation{
		ID: id,
		Turns: []models.ConversationTurn{
			{ID: "turn-1", Role: models.TurnRoleUser, Content: "hello", CreatedAt: now},
			{ID: "turn-2", Role: models.TurnRoleAssistant, Content: "What is the URL of your store?", State: state, CreatedAt: now},
		},
		CreatedAt: now,
	})
	require.NoError(t, err)
}

func TestAPIHandlers_PostMessage(t *testing.T) {
	t.Parallel()

	complete := false
	engineMessages := []*models.Message{{
		ID:               "msg-1",
		ResponseTo:       "user-msg-1",
		Role:             models.TurnRoleAssistant,
		Type:             models.MessageTypeMessage,
		Content:          "What is the URL of your store?",
		Nodes:            models.NewWorkflowState().Nodes,
		Connections:      models.NewWorkflowState().Connections,
		WorkflowComplete: &complete,
	}}

	tests := []struct {
		name           string
		requestBody    any
		expectedStatus int
		validateResult func(t *testing.T, body []byte)
	}{
		{
			name:           "successful turn",
			requestBody:    web.SendMessageRequest{Content: "I want to sync my shop"},
			expectedStatus: http.StatusOK,
			validateResult: func(t *testing.T, body []byte) {
				t.Helper()

				var response struct {
					Messages []*models.Message `json:"messages"`
				}

				err := json.Unmarshal(body, &response)
				require.NoError(t, err)
				require.Len(t, response.Messages, 1)
				assert.Equal(t, models.MessageTypeMessage, response.Messages[0].Type)
				assert.Len(t, response.Messages[0].Nodes, 3)
				assert.Len(t, response.Messages[0].Connections, 2)
			},
		},
		{
			name:           "validation error - empty content",
			requestBody:    web.SendMessageRequest{Content: ""},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid JSON",
			requestBody:    "not-json",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			engine := &stubEngine{messages: engineMessages}
			app, _ := setupTestApp(t, engine)

			var (
				body []byte
				err  error
			)

			if str, ok := tt.requestBody.(string); ok {
				body = []byte(str)
			} else {
				body, err = json.Marshal(tt.requestBody)
				require.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/conversations/conv-1/messages", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)

			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.validateResult != nil {
				var buf bytes.Buffer

				_, err = buf.ReadFrom(resp.Body)
				require.NoError(t, err)

				tt.validateResult(t, buf.Bytes())
				assert.Equal(t, "conv-1", engine.gotID)
			}
		})
	}
}

func TestAPIHandlers_GetConversation(t *testing.T) {
	t.Parallel()

	app, repository := setupTestApp(t, &stubEngine{})
	storedConversation(t, repository, "conv-get")

	req := httptest.NewRequest(http.MethodGet, "/conversations/conv-get", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var response web.ConversationResponse

	err = json.NewDecoder(resp.Body).Decode(&response)
	require.NoError(t, err)

	assert.Equal(t, "conv-get", response.ID)
	assert.Len(t, response.Turns, 2)
	assert.Len(t, response.Nodes, 3)
	assert.Len(t, response.Connections, 2)
	assert.False(t, response.WorkflowComplete)
}

func TestAPIHandlers_GetConversation_NotFound(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t, &stubEngine{})

	req := httptest.NewRequest(http.MethodGet, "/conversations/missing", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIHandlers_ListConversations(t *testing.T) {
	t.Parallel()

	app, repository := setupTestApp(t, &stubEngine{})
	storedConversation(t, repository, "conv-a")
	storedConversation(t, repository, "conv-b")

	req := httptest.NewRequest(http.MethodGet, "/conversations/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var response struct {
		Conversations []string `json:"conversations"`
		TotalCount    int      `json:"total_count"`
	}

	err = json.NewDecoder(resp.Body).Decode(&response)
	require.NoError(t, err)

	assert.Equal(t, 2, response.TotalCount)
	assert.ElementsMatch(t, []string{"conv-a", "conv-b"}, response.Conversations)
}

func TestAPIHandlers_DeleteConversation(t *testing.T) {
	t.Parallel()

	app, repository := setupTestApp(t, &stubEngine{})
	storedConversation(t, repository, "conv-del")

	req := httptest.NewRequest(http.MethodDelete, "/conversations/conv-del", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	req = httptest.NewRequest(http.MethodDelete, "/conversations/conv-del", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIHandlers_HealthCheck(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t, &stubEngine{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
