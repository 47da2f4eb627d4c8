package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/voyagent/voyagent/config"
	"github.com/voyagent/voyagent/core"
	"github.com/voyagent/voyagent/logging"
	"github.com/voyagent/voyagent/memory"
	"github.com/voyagent/voyagent/retrieval"
	"github.com/voyagent/voyagent/session"
	"github.com/voyagent/voyagent/tool"
)

// Options holds dependency and configuration overrides passed to New.
type Options struct {
	// SessionStore persists AgentState snapshots between requests.
	SessionStore core.SessionStore
	// Registry maps tool names to capabilities; populated before requests run.
	Registry *tool.Registry
	// Embedder converts requirement text to a query vector. Optional;
	// retrieval is skipped (and marked degraded) when nil.
	Embedder core.Embedder
	// Corpus supplies candidate chunks for grounding. Optional like Embedder.
	Corpus core.Corpus
	// Planner decides the tool plan. Optional; the heuristic planner is the
	// default and also the fallback when a configured planner errors.
	Planner Planner
	// Logger receives structured progress events.
	Logger logging.Logger
	// Config bounds memory, retrieval and execution. Nil selects defaults.
	Config *config.Config
}

// Result is what HandleQuery returns to the caller: the terminal phase plus
// the structured output and the per-call error records accumulated on the
// way there.
type Result struct {
	SessionID        string                 `json:"session_id"`
	Phase            core.Phase             `json:"phase"`
	StructuredOutput *core.StructuredOutput `json:"structured_output"`
	Citations        []core.Citation        `json:"citations,omitempty"`
	ToolErrors       []core.ToolErrorRecord `json:"tool_errors,omitempty"`
}

// sessionHandle serializes request execution per session and owns the
// session's conversation memory for the orchestrator's lifetime.
type sessionHandle struct {
	mu     sync.Mutex
	memory *memory.Memory
	state  *core.AgentState // last state observed, for GetPhase
}

// Orchestrator drives requests through the phase lifecycle. Public methods
// are safe for concurrent use; see the package doc for the per-session
// serialization rules.
type Orchestrator struct {
	sessionStore core.SessionStore
	registry     *tool.Registry
	embedder     core.Embedder
	corpus       core.Corpus
	retriever    *retrieval.Retriever
	planner      Planner
	fallback     Planner
	logger       logging.Logger
	cfg          *config.Config

	mu       sync.Mutex
	sessions map[string]*sessionHandle
}

// New constructs an Orchestrator with optional overrides. Unset services
// default to in-memory implementations; a nil Config gets the package
// defaults. Invalid configuration is a ConfigError.
func New(optFns ...func(o *Options)) (*Orchestrator, error) {
	registry, err := tool.NewRegistry()
	if err != nil {
		return nil, err
	}
	opts := Options{
		SessionStore: session.NewInMemoryStore(),
		Registry:     registry,
		Logger:       logging.NoOpLogger{},
		Config:       config.Default(),
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	heuristic := NewHeuristicPlanner()
	planner := opts.Planner
	if planner == nil {
		planner = heuristic
	}

	return &Orchestrator{
		sessionStore: opts.SessionStore,
		registry:     opts.Registry,
		embedder:     opts.Embedder,
		corpus:       opts.Corpus,
		retriever:    retrieval.New(),
		planner:      planner,
		fallback:     heuristic,
		logger:       opts.Logger,
		cfg:          opts.Config,
		sessions:     make(map[string]*sessionHandle),
	}, nil
}

// CreateSession allocates a new session and returns its ID.
func (o *Orchestrator) CreateSession() (string, error) {
	id := core.NewID()
	_, err := o.handle(id)
	return id, err
}

// handle returns the session handle, creating it (and its memory) lazily.
func (o *Orchestrator) handle(sessionID string) (*sessionHandle, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if h, ok := o.sessions[sessionID]; ok {
		return h, nil
	}
	mem, err := memory.New(o.cfg.Memory.MaxItems)
	if err != nil {
		return nil, err
	}
	h := &sessionHandle{memory: mem}
	o.sessions[sessionID] = h
	return h, nil
}

// GetPhase reports the session's current phase. Sessions that never ran a
// request report PhaseInit.
func (o *Orchestrator) GetPhase(ctx context.Context, sessionID string) (core.Phase, error) {
	o.mu.Lock()
	h, ok := o.sessions[sessionID]
	o.mu.Unlock()
	if ok {
		h.mu.Lock()
		state := h.state
		h.mu.Unlock()
		if state != nil {
			return state.CurrentPhase(), nil
		}
	}
	state, err := o.sessionStore.Load(ctx, sessionID)
	if err != nil {
		return core.PhaseInit, err
	}
	if state == nil {
		return core.PhaseInit, nil
	}
	return state.CurrentPhase(), nil
}

// GetConversationHistory returns the most recent limit turns for the
// session in chronological order; limit <= 0 returns the full retained
// window.
func (o *Orchestrator) GetConversationHistory(sessionID string, limit int) ([]memory.Entry, error) {
	h, err := o.handle(sessionID)
	if err != nil {
		return nil, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.memory.History(limit), nil
}

// HandleQuery drives one request for the session from Init to Done and
// returns the packaged result. The call blocks while another request holds
// the same session. Per-call tool and retrieval failures are recorded on the
// state and reflected in the result; only ConfigError/StateError make
// HandleQuery itself fail.
func (o *Orchestrator) HandleQuery(ctx context.Context, sessionID, text string) (*Result, error) {
	h, err := o.handle(sessionID)
	if err != nil {
		return nil, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	logger := o.logger
	if cl, ok := logger.(*logging.ConciergeLogger); ok {
		logger = cl.WithSession(sessionID)
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline && o.cfg.Orchestrator.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.Orchestrator.RequestTimeout)
		defer cancel()
	}

	state := o.loadOrCreateState(ctx, sessionID, logger)
	h.state = state

	h.memory.Add(memory.RoleUser, text)

	r := &run{
		orchestrator: o,
		state:        state,
		memory:       h.memory,
		query:        text,
		logger:       logger,
	}

	for !state.CurrentPhase().Terminal() {
		if ctx.Err() != nil && state.CurrentPhase() < core.PhaseProduceOutput {
			// Request deadline: package whatever partial state accumulated.
			if state.ForceOutput() {
				r.forced = true
				logger.Warn("request.deadline", "forced_phase", state.CurrentPhase().String())
			}
		}

		switch state.CurrentPhase() {
		case core.PhaseInit:
			// Nothing to do; the first advance starts the lifecycle.
		case core.PhaseClarifyRequirements:
			r.clarify()
		case core.PhasePlanTools:
			r.plan(ctx)
		case core.PhaseExecuteTools:
			r.executeTools(ctx)
		case core.PhaseAnalyzeResults:
			r.analyze(ctx)
		case core.PhaseResolveIssues:
			r.evaluateIssues()
		case core.PhaseProduceOutput:
			r.produceOutput()
		}

		from := state.CurrentPhase()
		if err := state.Advance(); err != nil {
			state.SetMetadata("error", err.Error())
			return nil, err
		}
		if cl, ok := logger.(*logging.ConciergeLogger); ok {
			cl.LogPhase(from.String(), state.CurrentPhase().String())
		} else {
			logger.Debug("phase.advance", "from", from.String(), "to", state.CurrentPhase().String())
		}
	}

	if out := state.Output(); out != nil {
		h.memory.Add(memory.RoleAgent, renderOutput(out))
	}

	// Persist with a store-scoped context so an expired request deadline
	// cannot lose the final snapshot.
	saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := o.sessionStore.Save(saveCtx, state); err != nil {
		logger.Warn("session.save_failed", "error", err.Error())
	}

	return &Result{
		SessionID:        sessionID,
		Phase:            state.CurrentPhase(),
		StructuredOutput: state.Output(),
		Citations:        state.CitationList(),
		ToolErrors:       state.ToolErrorList(),
	}, nil
}

// loadOrCreateState resumes a previously interrupted request when the store
// holds a non-terminal snapshot; otherwise every request starts a fresh
// lifecycle (conversation continuity lives in memory, not in AgentState).
func (o *Orchestrator) loadOrCreateState(ctx context.Context, sessionID string, logger logging.Logger) *core.AgentState {
	state, err := o.sessionStore.Load(ctx, sessionID)
	if err != nil {
		logger.Warn("session.load_failed", "error", err.Error())
		state = nil
	}
	if state == nil || state.CurrentPhase().Terminal() {
		return core.NewAgentState(sessionID, o.cfg.Orchestrator.MaxResolveAttempts)
	}
	return state
}
