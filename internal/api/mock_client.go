package api

import (
	"context"
	"strings"
	"sync"

	apierrors "github.com/diogo/recallchat/internal/errors"
)

// MockChatClient is a mock implementation of ChatClientInterface for testing
type MockChatClient struct {
	// Mock return values
	SendFunc    func(ctx context.Context, message string) (string, error)
	Reply       string
	Err         error
	EndpointVal string

	// Call recorders
	mu          sync.Mutex
	Messages    []string
	CloseCalled bool
}

// Ensure MockChatClient implements ChatClientInterface
var _ ChatClientInterface = (*MockChatClient)(nil)

func (m *MockChatClient) Send(ctx context.Context, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", apierrors.ErrEmptyMessage
	}

	m.mu.Lock()
	m.Messages = append(m.Messages, message)
	m.mu.Unlock()

	if m.SendFunc != nil {
		return m.SendFunc(ctx, message)
	}
	return m.Reply, m.Err
}

func (m *MockChatClient) Endpoint() string {
	return m.EndpointVal
}

func (m *MockChatClient) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCalled = true
}

// SendCount returns the number of exchanges issued
func (m *MockChatClient) SendCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Messages)
}
