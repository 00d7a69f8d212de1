package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pipewise/pipewise/pkg/llm"
)

// MockModelClient is a mock implementation of llm.Client.
type MockModelClient struct {
	mock.Mock
}

func (m *MockModelClient) Generate(ctx context.Context, req llm.Request) (string, error) {
	args := m.Called(ctx, req)

	return args.String(0), args.Error(1)
}

func (m *MockModelClient) Validate(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

// MockDualGenerator is a mock implementation of llm.DualGenerator.
type MockDualGenerator struct {
	mock.Mock
}

func (m *MockDualGenerator) GenerateDual(ctx context.Context, prose, structured llm.Request) (llm.DualResult, error) {
	args := m.Called(ctx, prose, structured)

	return args.Get(0).(llm.DualResult), args.Error(1)
}
