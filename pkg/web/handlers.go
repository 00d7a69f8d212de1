// Package web provides the HTTP handlers for the conversation API.
package web

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/pipewise/pipewise/pkg/conversation"
	"github.com/pipewise/pipewise/pkg/models"
	"github.com/pipewise/pipewise/pkg/persistence"
)

// Engine processes one user message for a conversation. The first returned
// message is the assistant reply; any further entries are status
// notifications.
type Engine interface {
	HandleMessage(ctx context.Context, conversationID, content string) ([]*models.Message, error)
}

// ModelChecker reports whether the model backend is reachable.
type ModelChecker interface {
	Validate(ctx context.Context) error
}

type APIHandlers struct {
	engine     Engine
	repository *conversation.Repository
	model      ModelChecker
	validator  *validator.Validate
}

func NewAPIHandlers(engine Engine, repository *conversation.Repository, model ModelChecker, validate *validator.Validate) *APIHandlers {
	return &APIHandlers{
		engine:     engine,
		repository: repository,
		model:      model,
		validator:  validate,
	}
}

// PostMessage accepts one user message, drives a full conversation turn and
// returns the assistant message with the updated workflow structure.
func (h *APIHandlers) PostMessage(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Conversation ID is required")
	}

	var req SendMessageRequest

	err := json.Unmarshal(c.Body(), &req)
	if err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	err = h.validator.Struct(req)
	if err != nil {
		return badRequest(c, "Invalid message: "+err.Error())
	}

	messages, err := h.engine.HandleMessage(c.Context(), id, req.Content)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"messages": messages})
}

func (h *APIHandlers) GetConversation(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Conversation ID is required")
	}

	stored, err := h.repository.FetchByID(c.Context(), id)
	if err != nil {
		if persistence.IsConversationNotFound(err) {
			return notFound(c, "Conversation not found")
		}

		return internalError(c, err)
	}

	return c.JSON(NewConversationResponse(stored))
}

func (h *APIHandlers) ListConversations(c fiber.Ctx) error {
	ids, err := h.repository.ListIDs(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"conversations": ids,
		"total_count":   len(ids),
	})
}

func (h *APIHandlers) DeleteConversation(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Conversation ID is required")
	}

	err := h.repository.Delete(c.Context(), id)
	if err != nil {
		if persistence.IsConversationNotFound(err) {
			return notFound(c, "Conversation not found")
		}

		return internalError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOk := h.repository.HealthCheck(c.Context())

	modelCheck := "Model backend is healthy"
	modelOk := true

	if h.model != nil {
		if err := h.model.Validate(c.Context()); err != nil {
			modelCheck = "Model backend is unhealthy: " + err.Error()
			modelOk = false
		}
	}

	status := "unhealthy"
	message := "Pipewise API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOk && modelOk {
		status = "healthy"
		message = "Pipewise API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"persistence": repositoryCheck,
			"model":       modelCheck,
		},
	})
}
