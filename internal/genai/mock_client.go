package genai

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockClient is a mock implementation of Client using testify/mock.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) Generate(ctx context.Context, apiKey, prompt string, relaxedSafety bool) (string, error) {
	args := m.Called(ctx, apiKey, prompt, relaxedSafety)
	return args.String(0), args.Error(1)
}
