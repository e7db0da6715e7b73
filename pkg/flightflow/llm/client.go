// Package llm provides the LLM client boundary for flightflow.
//
// The engine only depends on the Client interface. Production wiring uses the
// OpenAI-compatible implementation; tests use MockClient.
package llm

import (
	"context"
	"time"
)

// Role identifies the message sender.
type Role string

// Standard message roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is a conversation turn sent to the model.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest configures an LLM completion call.
type CompletionRequest struct {
	// Prompt configuration
	SystemPrompt string    `json:"system_prompt,omitempty"`
	Messages     []Message `json:"messages"`

	// Model configuration
	Model       string  `json:"model,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// CompletionResponse is the output of a completion call.
type CompletionResponse struct {
	Content      string        `json:"content"`
	Model        string        `json:"model"`
	FinishReason string        `json:"finish_reason"`
	Duration     time.Duration `json:"duration"`
}

// Client is a synchronous LLM completion client.
// Implementations must be safe for concurrent use.
type Client interface {
	// Complete performs a single completion call.
	// Errors include timeouts and provider failures; callers are expected
	// to degrade gracefully rather than propagate them into routing.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}
