package core

import (
	"fmt"
	"strings"
)

// ConfigError reports invalid construction parameters (a conversation memory
// with capacity < 1, a non-positive tool timeout, ...). It is the only error
// in the taxonomy that is fatal at construction time.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s: %s", e.Field, e.Message)
}

// NewConfigError creates a ConfigError for the named field.
func NewConfigError(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// StateError reports an illegal phase transition, i.e. advancing a state
// whose phase is already terminal. It is fatal to the in-flight request.
type StateError struct {
	SessionID string
	Phase     Phase
	Message   string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("state error in session %s (phase %s): %s", e.SessionID, e.Phase, e.Message)
}

// ToolInvocationError reports a failed or timed out tool call. It is
// recovered locally: the orchestrator records it on the state and sibling
// tool calls proceed unaffected.
type ToolInvocationError struct {
	Tool    string
	CallID  string
	Message string
	Timeout bool
}

func (e *ToolInvocationError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("tool %s (call %s) timed out: %s", e.Tool, e.CallID, e.Message)
	}
	return fmt.Sprintf("tool %s (call %s) failed: %s", e.Tool, e.CallID, e.Message)
}

// RetrievalError reports a failure in the grounding path: the embedding
// service, the corpus fetch, or a per-chunk dimensionality mismatch during
// ranking. Retrieval degrades to fewer or zero citations; it never aborts
// the request.
type RetrievalError struct {
	Stage   string // "embed", "corpus" or "rank"
	ChunkID string // set for per-chunk ranking failures
	Message string
}

func (e *RetrievalError) Error() string {
	if e.ChunkID != "" {
		return fmt.Sprintf("retrieval error (%s, chunk %s): %s", e.Stage, e.ChunkID, e.Message)
	}
	return fmt.Sprintf("retrieval error (%s): %s", e.Stage, e.Message)
}

// ValidationError reports a structured output missing caller-required
// fields. It is surfaced as a partial result flagged incomplete, never as a
// dropped response.
type ValidationError struct {
	Missing []string
	Message string
}

func (e *ValidationError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("validation error: missing %s: %s", strings.Join(e.Missing, ", "), e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}
