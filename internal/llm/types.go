// Package llm provides LLM client implementations.
package llm

import (
	"log/slog"
	"time"
)

// LevelTrace is below Debug, used for wire-level payload logging.
const LevelTrace = slog.Level(-8)

// Message represents a chat message for the LLM.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"` // For tool responses
}

// ToolCall represents a tool call from the model.
type ToolCall struct {
	ID       string `json:"id,omitempty"` // Provider-assigned ID for tool result correlation
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"` // JSON-encoded, as sent on the wire
	} `json:"function"`
}

// ChatResponse is the unified response from any LLM provider.
// All fields use proper Go types; wire format conversion happens
// at provider boundaries (openai.go).
type ChatResponse struct {
	Model     string
	CreatedAt time.Time
	Message   Message
	Done      bool

	// Token usage (provider-neutral)
	InputTokens  int
	OutputTokens int
}
