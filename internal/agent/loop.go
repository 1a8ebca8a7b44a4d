// Package agent runs the tool-calling conversation loop.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/qoodeng/wolfe/internal/llm"
	"github.com/qoodeng/wolfe/internal/tools"
)

const defaultMaxIter = 8

// Recorder persists conversation activity. Implementations must not
// block the loop for long; recording failures are logged and ignored.
type Recorder interface {
	RecordMessage(ctx context.Context, conversationID, role, content string) error
	RecordToolCall(ctx context.Context, conversationID, tool, arguments, result string) error
}

// Conversation is one caller's dialogue with the agent. It owns the
// message history, so a Conversation must not be shared across
// connections. Methods are not safe for concurrent use; the session
// layer serializes turns.
type Conversation struct {
	id       string
	logger   *slog.Logger
	llm      llm.Client
	registry *tools.Registry
	recorder Recorder
	model    string
	maxIter  int

	messages []llm.Message
}

// Options configures a Conversation.
type Options struct {
	Model             string
	MaxToolIterations int
	SystemPrompt      string
	Recorder          Recorder
}

// NewConversation creates a conversation with an empty history and the
// standing system prompt.
func NewConversation(logger *slog.Logger, llmClient llm.Client, registry *tools.Registry, opts Options) *Conversation {
	if logger == nil {
		logger = slog.Default()
	}
	id, _ := uuid.NewV7()

	maxIter := opts.MaxToolIterations
	if maxIter <= 0 {
		maxIter = defaultMaxIter
	}
	prompt := opts.SystemPrompt
	if prompt == "" {
		prompt = SystemPrompt
	}

	return &Conversation{
		id:       id.String(),
		logger:   logger.With("conversation_id", id.String()),
		llm:      llmClient,
		registry: registry,
		recorder: opts.Recorder,
		model:    opts.Model,
		maxIter:  maxIter,
		messages: []llm.Message{{Role: "system", Content: prompt}},
	}
}

// ID returns the conversation's unique identifier.
func (c *Conversation) ID() string {
	return c.id
}

// Greeting produces the agent's opening line. Called once when the
// caller connects, before any input arrives.
func (c *Conversation) Greeting(ctx context.Context) (string, error) {
	c.append(ctx, llm.Message{Role: "system", Content: GreetingInstruction})
	return c.complete(ctx)
}

// Turn processes one caller utterance and returns the agent's reply.
// Tool faults degrade the turn (the model is told and can apologize);
// only LLM transport failures surface as errors.
func (c *Conversation) Turn(ctx context.Context, userText string) (string, error) {
	c.append(ctx, llm.Message{Role: "user", Content: userText})
	return c.complete(ctx)
}

// complete drives the model until it answers with text, executing tool
// calls between iterations.
func (c *Conversation) complete(ctx context.Context) (string, error) {
	ctx = tools.WithConversationID(ctx, c.id)
	toolDefs := c.registry.List()
	start := time.Now()
	var totalInput, totalOutput int

	for i := 0; i < c.maxIter; i++ {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("conversation cancelled: %w", err)
		}

		resp, err := c.llm.Chat(ctx, c.model, c.messages, toolDefs)
		if err != nil {
			return "", fmt.Errorf("llm call failed (iter %d): %w", i, err)
		}

		totalInput += resp.InputTokens
		totalOutput += resp.OutputTokens

		if len(resp.Message.ToolCalls) == 0 {
			c.append(ctx, resp.Message)
			c.logger.Info("turn complete",
				"iterations", i+1,
				"input_tokens", totalInput,
				"output_tokens", totalOutput,
				"elapsed", time.Since(start).Round(time.Millisecond),
			)
			return resp.Message.Content, nil
		}

		c.append(ctx, resp.Message)
		for _, tc := range resp.Message.ToolCalls {
			c.messages = append(c.messages, llm.Message{
				Role:       "tool",
				Content:    c.executeTool(ctx, tc),
				ToolCallID: tc.ID,
			})
		}
	}

	// Tool budget exhausted. One final call without tools forces a
	// spoken answer instead of another tool request.
	c.logger.Warn("max tool iterations reached", "max_iter", c.maxIter)

	resp, err := c.llm.Chat(ctx, c.model, c.messages, nil)
	if err != nil {
		return "", fmt.Errorf("llm call failed after tool budget: %w", err)
	}
	c.append(ctx, resp.Message)
	return resp.Message.Content, nil
}

// executeTool runs a single tool call and returns the payload for the
// model. Failures never abort the turn: an unknown tool or execution
// fault becomes an error payload the model can recover from.
func (c *Conversation) executeTool(ctx context.Context, tc llm.ToolCall) string {
	start := time.Now()

	payload, err := c.registry.Execute(ctx, tc.Function.Name, tc.Function.Arguments)
	if err != nil {
		var unavailable *tools.ErrToolUnavailable
		if errors.As(err, &unavailable) {
			c.logger.Error("model requested unknown tool", "tool", tc.Function.Name)
		} else {
			c.logger.Error("tool call rejected", "tool", tc.Function.Name, "error", err)
		}
		payload = tools.ErrorPayload(err)
	}

	c.logger.Debug("tool executed",
		"tool", tc.Function.Name,
		"result_len", len(payload),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	if c.recorder != nil {
		if rerr := c.recorder.RecordToolCall(ctx, c.id, tc.Function.Name, tc.Function.Arguments, payload); rerr != nil {
			c.logger.Warn("failed to record tool call", "error", rerr)
		}
	}
	return payload
}

// append adds a message to the history and records it.
func (c *Conversation) append(ctx context.Context, m llm.Message) {
	c.messages = append(c.messages, m)
	if c.recorder == nil || (m.Content == "" && len(m.ToolCalls) > 0) {
		return
	}
	if err := c.recorder.RecordMessage(ctx, c.id, m.Role, m.Content); err != nil {
		c.logger.Warn("failed to record message", "role", m.Role, "error", err)
	}
}
