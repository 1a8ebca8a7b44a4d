package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/qoodeng/wolfe/internal/httpkit"
)

// OpenAIClient implements Client using the OpenAI chat completions API.
type OpenAIClient struct {
	client *openai.Client
	logger *slog.Logger
}

// NewOpenAIClient creates an OpenAI-backed client. An empty baseURL
// uses the public API endpoint.
func NewOpenAIClient(apiKey, baseURL string, logger *slog.Logger) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: api key is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = httpkit.NewClient(httpkit.WithTimeout(2 * time.Minute))

	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		logger: logger.With("provider", "openai"),
	}, nil
}

// Chat sends a chat completion request and returns the response.
func (c *OpenAIClient) Chat(ctx context.Context, model string, messages []Message, tools []map[string]any) (*ChatResponse, error) {
	req := openai.ChatCompletionRequest{
		Model:    model,
		Messages: toOpenAIMessages(messages),
	}

	wireTools, err := toOpenAITools(tools)
	if err != nil {
		return nil, fmt.Errorf("openai: encode tools: %w", err)
	}
	req.Tools = wireTools

	if c.logger.Enabled(ctx, LevelTrace) {
		if raw, err := json.Marshal(req); err == nil {
			c.logger.Log(ctx, LevelTrace, "chat request", "payload", string(raw))
		}
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai: no choices in response")
	}

	choice := resp.Choices[0]
	out := &ChatResponse{
		Model:        resp.Model,
		CreatedAt:    time.Unix(resp.Created, 0),
		Message:      fromOpenAIMessage(choice.Message),
		Done:         true,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}

	c.logger.Debug("chat completion",
		"model", resp.Model,
		"finish_reason", choice.FinishReason,
		"tool_calls", len(out.Message.ToolCalls),
		"input_tokens", out.InputTokens,
		"output_tokens", out.OutputTokens,
		"duration", time.Since(start))

	return out, nil
}

// Ping checks if the provider is reachable.
func (c *OpenAIClient) Ping(ctx context.Context) error {
	if _, err := c.client.ListModels(ctx); err != nil {
		return fmt.Errorf("openai: ping: %w", err)
	}
	return nil
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		wire := openai.ChatCompletionMessage{
			Role:       m.Role,
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
		for _, tc := range m.ToolCalls {
			wire.ToolCalls = append(wire.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				},
			})
		}
		out = append(out, wire)
	}
	return out
}

func fromOpenAIMessage(m openai.ChatCompletionMessage) Message {
	out := Message{
		Role:    m.Role,
		Content: m.Content,
	}
	for _, tc := range m.ToolCalls {
		var call ToolCall
		call.ID = tc.ID
		call.Function.Name = tc.Function.Name
		call.Function.Arguments = tc.Function.Arguments
		out.ToolCalls = append(out.ToolCalls, call)
	}
	return out
}

// toOpenAITools converts the registry's wire-shaped tool list to SDK
// types via a JSON round trip, which keeps the registry decoupled from
// the SDK's structs.
func toOpenAITools(tools []map[string]any) ([]openai.Tool, error) {
	if len(tools) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(tools)
	if err != nil {
		return nil, err
	}
	var out []openai.Tool
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
