// Package model defines the minimal text-completion contract consumed by the
// optional LLM tool planner. Concrete adapters for the OpenAI and Anthropic
// APIs live in the subpackages; the orchestrator never imports an SDK
// directly.
package model

import "context"

// Model produces a single completion for a system instruction plus user
// prompt. Implementations call an external generation service; failures
// propagate to the planner, which falls back to heuristic planning.
type Model interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}
