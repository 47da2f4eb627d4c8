package core

import (
	"context"

	"github.com/google/uuid"
)

// SessionStore persists AgentState snapshots between requests. Load returns
// (nil, nil) when no state exists for the session; absence is not an error.
type SessionStore interface {
	Load(ctx context.Context, sessionID string) (*AgentState, error)
	Save(ctx context.Context, state *AgentState) error
}

// Embedder converts text into a fixed-length vector. Implementations call an
// external embedding service; failures surface to the orchestrator, which
// records them as RetrievalErrors and degrades gracefully.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Corpus supplies candidate knowledge chunks for ranking. scope filters the
// candidate set (corpus-specific semantics, "" means everything). The corpus
// is read-only and must be safe for concurrent invocation across sessions.
type Corpus interface {
	FetchCandidates(ctx context.Context, scope string) ([]KnowledgeChunk, error)
}

// NewID generates a unique identifier for sessions, tool calls and issues.
func NewID() string { return uuid.NewString() }
