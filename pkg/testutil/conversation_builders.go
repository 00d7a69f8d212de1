// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/pipewise/pipewise/pkg/models"
)

// CreateTestState creates a workflow state with default values that can be
// overridden.
func CreateTestState(overrides ...func(*models.WorkflowState)) *models.WorkflowState {
	state := models.NewWorkflowState()

	for _, override := range overrides {
		override(state)
	}

	for _, node := range state.Nodes {
		node.Recompute()
	}

	state.Recompute()

	return state
}

// WithProvidedFields marks fields of one node as provided.
func WithProvidedFields(nodeID string, fields ...string) func(*models.WorkflowState) {
	return func(s *models.WorkflowState) {
		node := s.NodeByID(nodeID)
		if node != nil {
			node.ProvidedFields = append(node.ProvidedFields, fields...)
		}
	}
}

// WithSourceComplete marks every source field as provided.
func WithSourceComplete() func(*models.WorkflowState) {
	return WithProvidedFields(models.SourceNodeID, models.DefaultRequiredFields(models.SourceNodeID)...)
}

// WithAllComplete marks every field of every node as provided.
func WithAllComplete() func(*models.WorkflowState) {
	return func(s *models.WorkflowState) {
		for _, node := range s.Nodes {
			node.ProvidedFields = models.DefaultRequiredFields(node.ID)
		}
	}
}

// CreateTestConversation creates a conversation with one completed exchange
// and default values that can be overridden.
func CreateTestConversation(overrides ...func(*models.Conversation)) *models.Conversation {
	now := time.Now().UTC()

	conversation := &models.Conversation{
		ID: uuid.New().String(),
		Turns: []models.ConversationTurn{
			{
				ID:        uuid.New().String(),
				Role:      models.TurnRoleUser,
				Content:   "I want to set up a data pipeline",
				CreatedAt: now,
			},
			{
				ID:        uuid.New().String(),
				Role:      models.TurnRoleAssistant,
				Content:   "What is the URL of your store?",
				State:     CreateTestState(),
				CreatedAt: now.Add(time.Second),
			},
		},
		CreatedAt: now,
		UpdatedAt: now.Add(time.Second),
	}

	for _, override := range overrides {
		override(conversation)
	}

	return conversation
}

// WithConversationID sets the conversation ID.
func WithConversationID(id string) func(*models.Conversation) {
	return func(c *models.Conversation) {
		c.ID = id
	}
}

// WithState replaces the state of the last assistant turn.
func WithState(state *models.WorkflowState) func(*models.Conversation) {
	return func(c *models.Conversation) {
		for i := len(c.Turns) - 1; i >= 0; i-- {
			if c.Turns[i].Role == models.TurnRoleAssistant {
				c.Turns[i].State = state

				return
			}
		}
	}
}

// WithUserTurn appends a user turn.
func WithUserTurn(content string) func(*models.Conversation) {
	return func(c *models.Conversation) {
		c.Turns = append(c.Turns, models.ConversationTurn{
			ID:        uuid.New().String(),
			Role:      models.TurnRoleUser,
			Content:   content,
			CreatedAt: time.Now().UTC(),
		})
	}
}
