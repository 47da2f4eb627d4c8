// Package voyagent provides a high-level façade over the request
// orchestrator and its service abstractions (sessions, tools, retrieval,
// conversation memory and logging) for building conversational travel
// concierges. Most applications interact with this package by:
//  1. Creating a Concierge via New() (optionally overriding default in-memory services)
//  2. Registering tools (the built-in travel set or custom ones)
//  3. Handling user queries synchronously with HandleQuery
//
// The façade delegates lifecycle management to orchestrator.Orchestrator
// while keeping setup ergonomics concise. All defaults are safe for local
// development and testing; production deployments typically supply a durable
// session store and a structured logger.
package voyagent

import (
	"context"

	"github.com/voyagent/voyagent/memory"
	"github.com/voyagent/voyagent/orchestrator"
)

// Options configures the Concierge instance. It mirrors orchestrator.Options.
type Options = orchestrator.Options

// Result is the outcome of a handled query.
type Result = orchestrator.Result

// Concierge is the high-level façade aggregating the underlying orchestrator.
type Concierge struct {
	orch *orchestrator.Orchestrator
}

// New creates a new Concierge with optional overrides. Any unset service is
// initialized with an in-memory implementation.
func New(optFns ...func(o *Options)) (*Concierge, error) {
	orch, err := orchestrator.New(optFns...)
	if err != nil {
		return nil, err
	}
	return &Concierge{orch: orch}, nil
}

// CreateSession allocates a new conversation session and returns its ID.
func (c *Concierge) CreateSession() (string, error) { return c.orch.CreateSession() }

// HandleQuery runs one user query through the full phase lifecycle and
// returns the structured result.
func (c *Concierge) HandleQuery(ctx context.Context, sessionID, text string) (*Result, error) {
	return c.orch.HandleQuery(ctx, sessionID, text)
}

// History returns up to limit recent conversation entries for a session.
func (c *Concierge) History(sessionID string, limit int) ([]memory.Entry, error) {
	return c.orch.GetConversationHistory(sessionID, limit)
}
