package summarizer

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockClient is a mock implementation of Client using testify/mock.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) Summarize(ctx context.Context, apiKey, transcript string) (Result, error) {
	args := m.Called(ctx, apiKey, transcript)
	return args.Get(0).(Result), args.Error(1)
}
