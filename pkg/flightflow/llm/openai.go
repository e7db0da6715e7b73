package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// OpenAI implements Client on top of langchaingo's OpenAI-compatible provider.
// It works with any endpoint speaking the OpenAI chat API (OpenAI, DeepSeek,
// local proxies) via the base-URL option.
type OpenAI struct {
	model   llms.Model
	name    string
	timeout time.Duration
}

// OpenAIOption configures the OpenAI client.
type OpenAIOption func(*openAIConfig)

type openAIConfig struct {
	baseURL string
	timeout time.Duration
}

// WithBaseURL points the client at an OpenAI-compatible endpoint.
func WithBaseURL(url string) OpenAIOption {
	return func(c *openAIConfig) { c.baseURL = url }
}

// WithTimeout bounds each completion call. Default: 30s.
func WithTimeout(d time.Duration) OpenAIOption {
	return func(c *openAIConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewOpenAI creates an OpenAI-backed client.
func NewOpenAI(apiKey, modelName string, opts ...OpenAIOption) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key required")
	}

	cfg := openAIConfig{timeout: 30 * time.Second}
	for _, opt := range opts {
		opt(&cfg)
	}

	providerOpts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithModel(modelName),
	}
	if cfg.baseURL != "" {
		providerOpts = append(providerOpts, openai.WithBaseURL(cfg.baseURL))
	}

	model, err := openai.New(providerOpts...)
	if err != nil {
		return nil, fmt.Errorf("create openai model: %w", err)
	}

	return &OpenAI{
		model:   model,
		name:    modelName,
		timeout: cfg.timeout,
	}, nil
}

// Complete implements Client.
func (o *OpenAI) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	content := make([]llms.MessageContent, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		content = append(content, llms.TextParts(llms.ChatMessageTypeSystem, req.SystemPrompt))
	}
	for _, m := range req.Messages {
		content = append(content, llms.TextParts(chatMessageType(m.Role), m.Content))
	}

	callOpts := []llms.CallOption{}
	if req.Model != "" {
		callOpts = append(callOpts, llms.WithModel(req.Model))
	}
	if req.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(req.MaxTokens))
	}
	if req.Temperature > 0 {
		callOpts = append(callOpts, llms.WithTemperature(req.Temperature))
	}

	resp, err := o.model.GenerateContent(callCtx, content, callOpts...)
	if err != nil {
		return nil, fmt.Errorf("complete: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("complete: empty response")
	}

	choice := resp.Choices[0]
	return &CompletionResponse{
		Content:      choice.Content,
		Model:        o.name,
		FinishReason: choice.StopReason,
		Duration:     time.Since(start),
	}, nil
}

func chatMessageType(r Role) llms.ChatMessageType {
	switch r {
	case RoleAssistant:
		return llms.ChatMessageTypeAI
	case RoleSystem:
		return llms.ChatMessageTypeSystem
	default:
		return llms.ChatMessageTypeHuman
	}
}
