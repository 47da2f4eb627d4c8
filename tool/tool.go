// Package tool implements the tool calling subsystem: a capability interface
// for external actions, an explicit name-to-tool registry populated at
// construction time, and a FunctionTool adapter that exposes a plain Go
// function with schema validated arguments and consistent error codes.
package tool

import (
	"context"
	"fmt"
)

// Tool defines the interface for extending the orchestrator with external
// capabilities (API calls, computations, lookups).
//
// Tool implementations should:
//   - Provide clear, descriptive names (snake_case recommended)
//   - Define a JSON schema for their parameters
//   - Be safe for concurrent invocation; the registry is shared by all sessions
//   - Honor context cancellation, since the orchestrator applies per-call timeouts
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description returns a human-readable description of what this tool does.
	Description() string

	// Parameters returns a JSON schema describing the expected arguments.
	Parameters() map[string]any

	// Call executes the tool with already-parsed arguments. Implementations
	// may assume args passed schema validation when invoked via the registry.
	Call(ctx context.Context, args map[string]any) (any, error)
}

// Error codes attached to ToolError by the built-in adapters.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeExecution  = "EXECUTION_ERROR"
	CodeUnknown    = "UNKNOWN_TOOL"
)

// ToolError represents errors that occur during tool lookup or execution.
type ToolError struct {
	Tool    string `json:"tool"`              // Name of the tool that failed
	Message string `json:"message"`           // Error message
	Code    string `json:"code"`              // Error code for categorization
	Details any    `json:"details,omitempty"` // Additional error details
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{Tool: tool, Message: message, Code: code}
}
