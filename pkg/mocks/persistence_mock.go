// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pipewise/pipewise/pkg/models"
)

// MockPersistence is a mock implementation of persistence.Persistence.
type MockPersistence struct {
	mock.Mock
}

func (m *MockPersistence) ConversationByID(ctx context.Context, id string) (*models.Conversation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Conversation), args.Error(1)
}

func (m *MockPersistence) SaveConversation(ctx context.Context, conversation *models.Conversation) error {
	args := m.Called(ctx, conversation)

	return args.Error(0)
}

func (m *MockPersistence) DeleteConversation(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

func (m *MockPersistence) ConversationIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]string), args.Error(1)
}

func (m *MockPersistence) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockPersistence) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}
