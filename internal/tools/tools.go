// Package tools defines the tools available to the agent.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
)

// Tool represents a callable tool.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
	Handler     func(ctx context.Context, args map[string]any) (Result, error) `json:"-"`
}

// Registry holds available tools.
type Registry struct {
	tools  map[string]*Tool
	order  []string
	logger *slog.Logger
}

// NewRegistry creates an empty registry. Tools are added with Register;
// see RegisterReservationTools for the standard set.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		tools:  make(map[string]*Tool),
		logger: logger.With("component", "tools"),
	}
}

// Register adds a tool to the registry.
func (r *Registry) Register(t *Tool) {
	if _, exists := r.tools[t.Name]; !exists {
		r.order = append(r.order, t.Name)
	}
	r.tools[t.Name] = t
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) *Tool {
	return r.tools[name]
}

// List returns all tools in registration order, in the wire shape the
// LLM expects.
func (r *Registry) List() []map[string]any {
	var result []map[string]any
	for _, name := range r.order {
		t := r.tools[name]
		result = append(result, map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        t.Name,
				"description": t.Description,
				"parameters":  t.Parameters,
			},
		})
	}
	return result
}

// Execute runs a tool by name with given arguments and returns the
// payload for the model. A handler error or panic is folded into an
// {"error": ...} payload with a nil error so the conversation can
// continue; only an unknown tool or malformed arguments surface as a
// Go error, since retrying those is pointless.
func (r *Registry) Execute(ctx context.Context, name string, argsJSON string) (payload string, err error) {
	tool := r.tools[name]
	if tool == nil {
		return "", &ErrToolUnavailable{ToolName: name}
	}

	var args map[string]any
	if argsJSON != "" {
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			return "", fmt.Errorf("invalid arguments for %s: %w", name, err)
		}
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("tool panicked", "tool", name, "panic", rec)
			payload = ErrorPayload(fmt.Errorf("tool %s failed", name))
			err = nil
		}
	}()

	r.logger.Debug("executing tool", "tool", name, "conversation_id", ConversationIDFromContext(ctx))

	result, herr := tool.Handler(ctx, args)
	if herr != nil {
		r.logger.Warn("tool returned error", "tool", name, "error", herr)
		return ErrorPayload(herr), nil
	}

	out, merr := result.Payload()
	if merr != nil {
		return ErrorPayload(fmt.Errorf("tool %s produced an unencodable result", name)), nil
	}
	return out, nil
}

// Argument helpers. The model is inconsistent about numeric types, so
// integers are accepted as JSON numbers or numeric strings.

func stringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("%s is required", key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("%s must be a non-empty string", key)
	}
	return s, nil
}

func optionalStringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func intArg(args map[string]any, key string) (int, error) {
	v, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("%s is required", key)
	}
	switch n := v.(type) {
	case float64:
		return int(n), nil
	case string:
		parsed, err := strconv.Atoi(n)
		if err != nil {
			return 0, fmt.Errorf("%s must be an integer: %w", key, err)
		}
		return parsed, nil
	case json.Number:
		parsed, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("%s must be an integer: %w", key, err)
		}
		return int(parsed), nil
	default:
		return 0, fmt.Errorf("%s must be an integer", key)
	}
}
