package session

import (
	"context"
	"sync"

	"github.com/voyagent/voyagent/core"
)

// InMemoryStore is a volatile SessionStore keeping state snapshots in a
// process-local map. It is safe for concurrent access. Stored and returned
// states are cloned so callers never alias internal data.
type InMemoryStore struct {
	mu     sync.RWMutex
	states map[string]*core.AgentState
}

// NewInMemoryStore constructs an empty in-memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{states: make(map[string]*core.AgentState)}
}

// Load returns a clone of the stored state, or (nil, nil) when the session
// has no saved state yet.
func (s *InMemoryStore) Load(_ context.Context, sessionID string) (*core.AgentState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[sessionID]
	if !ok {
		return nil, nil
	}
	return state.Clone(), nil
}

// Save stores a clone of the provided state snapshot.
func (s *InMemoryStore) Save(_ context.Context, state *core.AgentState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state.SessionID] = state.Clone()
	return nil
}
