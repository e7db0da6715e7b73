package llm

import (
	"context"
	"sync"
	"time"
)

// MockClient is a scripted Client for tests.
// It returns a fixed response, cycles through a response sequence, or fails
// with a configured error, and records every request it receives.
type MockClient struct {
	mu sync.Mutex

	responses []string
	index     int
	err       error

	// Calls records every request, in order.
	Calls []CompletionRequest
}

// Compile-time interface check.
var _ Client = (*MockClient)(nil)

// NewMockClient creates a mock that always returns the given content.
func NewMockClient(content string) *MockClient {
	return &MockClient{responses: []string{content}}
}

// WithResponses replaces the response script. Responses are returned in order
// and cycle back to the first after the last.
func (m *MockClient) WithResponses(responses ...string) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = responses
	m.index = 0
	return m
}

// WithError makes every Complete call fail with err.
func (m *MockClient) WithError(err error) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// Complete implements Client.
func (m *MockClient) Complete(_ context.Context, req CompletionRequest) (*CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	if m.err != nil {
		return nil, m.err
	}

	content := ""
	if len(m.responses) > 0 {
		content = m.responses[m.index%len(m.responses)]
		m.index++
	}

	return &CompletionResponse{
		Content:      content,
		Model:        "mock",
		FinishReason: "stop",
		Duration:     time.Millisecond,
	}, nil
}

// CallCount returns how many times Complete was called.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastCall returns the most recent request, or nil if none were made.
func (m *MockClient) LastCall() *CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return nil
	}
	last := m.Calls[len(m.Calls)-1]
	return &last
}
