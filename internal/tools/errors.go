// Package tools provides the tool registry and execution framework.
//
// This file defines sentinel error types for tool execution.
package tools

import "fmt"

// ErrToolUnavailable is returned when a tool call targets a tool that
// is not present in the registry. This indicates a capability mismatch,
// not a transient execution failure. Callers should tell the model the
// tool does not exist rather than retry the same call.
type ErrToolUnavailable struct {
	ToolName string
}

// Error implements the error interface.
func (e *ErrToolUnavailable) Error() string {
	return fmt.Sprintf("tool %q is not available in this context", e.ToolName)
}
