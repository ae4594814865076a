package llm

import (
	"context"
	"sync"

	"github.com/Harshitk-cp/fitcheck/internal/domain"
)

// MockClient is a configurable completion client for testing.
// Set Response/Error for a fixed reply, or Func to decide per request.
// Safe for concurrent use.
type MockClient struct {
	Response string
	Error    error
	Func     func(ctx context.Context, req domain.CompletionRequest) (string, error)

	mu    sync.Mutex
	calls []domain.CompletionRequest
}

// NewMockClient returns a mock with no scripted reply. Its Complete reports
// Unavailable, which drives callers onto their offline fallbacks.
func NewMockClient() *MockClient {
	return &MockClient{}
}

func (c *MockClient) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	c.mu.Lock()
	c.calls = append(c.calls, req)
	c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", domain.NewError(domain.KindTimeout, "mock completion cancelled", err)
	}
	if c.Func != nil {
		return c.Func(ctx, req)
	}
	if c.Error != nil {
		return "", c.Error
	}
	if c.Response == "" {
		return "", domain.NewError(domain.KindUnavailable, "mock completion client has no scripted response", nil)
	}
	return c.Response, nil
}

// Calls returns a copy of every request received so far.
func (c *MockClient) Calls() []domain.CompletionRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.CompletionRequest, len(c.calls))
	copy(out, c.calls)
	return out
}
