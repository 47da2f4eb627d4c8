package core

import (
	"sync"
	"time"
)

// ToolCall records one planned/dispatched tool invocation.
type ToolCall struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

// ToolErrorRecord is the persisted form of a ToolInvocationError. Tool
// failures are data recorded on the state, not exceptions raised by it.
type ToolErrorRecord struct {
	CallID    string    `json:"call_id"`
	Tool      string    `json:"tool"`
	Message   string    `json:"message"`
	Timeout   bool      `json:"timeout,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Issue is an unresolved problem discovered while evaluating tool errors or
// analysis results. Retries counts how many resolve rounds it survived.
type Issue struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Retries     int    `json:"retries"`
	Resolved    bool   `json:"resolved,omitempty"`
}

// Citation references a corpus chunk used to ground part of the output.
type Citation struct {
	ChunkID string            `json:"chunk_id"`
	Score   float64           `json:"score"`
	Source  map[string]string `json:"source,omitempty"`
}

// AgentState is the per-session record of phase, collected requirements,
// tool invocations, analysis results, issues, and the final structured
// output. The phase advances monotonically through the Phase enumeration
// except for the bounded ResolveIssues -> ExecuteTools loop.
//
// Exported fields carry JSON tags so session stores can persist the state
// verbatim. All mutation goes through the methods below, which serialize
// access with an internal mutex; a session is nevertheless owned by exactly
// one orchestrator execution at a time (see orchestrator package).
type AgentState struct {
	SessionID          string            `json:"session_id"`
	Phase              Phase             `json:"phase"`
	Requirements       []string          `json:"requirements,omitempty"`
	ToolsCalled        []ToolCall        `json:"tools_called,omitempty"`
	ToolResults        map[string]any    `json:"tool_results,omitempty"`
	ToolErrors         []ToolErrorRecord `json:"tool_errors,omitempty"`
	AnalysisResults    map[string]any    `json:"analysis_results,omitempty"`
	Issues             []Issue           `json:"issues,omitempty"`
	Citations          []Citation        `json:"citations,omitempty"`
	StructuredOutput   *StructuredOutput `json:"structured_output,omitempty"`
	Metadata           map[string]string `json:"metadata,omitempty"`
	ResolveAttempts    int               `json:"resolve_attempts"`
	MaxResolveAttempts int               `json:"max_resolve_attempts"`
	Created            time.Time         `json:"created"`
	Updated            time.Time         `json:"updated"`

	mu sync.RWMutex
}

// NewAgentState creates a state at PhaseInit with all collections empty and
// ResolveAttempts zero. maxResolveAttempts bounds the resolve loop; values
// below zero are clamped to zero (the loop then never fires).
func NewAgentState(sessionID string, maxResolveAttempts int) *AgentState {
	if maxResolveAttempts < 0 {
		maxResolveAttempts = 0
	}
	now := time.Now().UTC()
	return &AgentState{
		SessionID:          sessionID,
		Phase:              PhaseInit,
		ToolResults:        map[string]any{},
		AnalysisResults:    map[string]any{},
		Metadata:           map[string]string{},
		MaxResolveAttempts: maxResolveAttempts,
		Created:            now,
		Updated:            now,
	}
}

// CurrentPhase returns the phase under the read lock.
func (s *AgentState) CurrentPhase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Phase
}

// Advance transitions the phase to its successor per the transition table.
// From ResolveIssues the transition depends on open issues and the resolve
// budget; looping back to ExecuteTools increments ResolveAttempts. Calling
// Advance while the phase is Done mutates nothing and returns a StateError.
func (s *AgentState) Advance() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Phase == PhaseDone {
		return &StateError{SessionID: s.SessionID, Phase: s.Phase, Message: "cannot advance past terminal phase"}
	}
	next := nextPhase(s.Phase, s.openIssuesLocked() > 0, s.ResolveAttempts, s.MaxResolveAttempts)
	if s.Phase == PhaseResolveIssues && next == PhaseExecuteTools {
		s.ResolveAttempts++
		for i := range s.Issues {
			if !s.Issues[i].Resolved {
				s.Issues[i].Retries++
			}
		}
	}
	s.Phase = next
	s.Updated = time.Now().UTC()
	return nil
}

// ForceOutput jumps the phase forward to PhaseProduceOutput. Used when the
// overall request deadline expires so the orchestrator can package whatever
// partial state has accumulated. Phases at or past PhaseProduceOutput are
// left alone; the move is forward-only.
func (s *AgentState) ForceOutput() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Phase >= PhaseProduceOutput {
		return false
	}
	s.Phase = PhaseProduceOutput
	s.Updated = time.Now().UTC()
	return true
}

// AddRequirement appends a requirement, keeping set semantics (duplicates
// are ignored, insertion order preserved).
func (s *AgentState) AddRequirement(req string) {
	if req == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.Requirements {
		if existing == req {
			return
		}
	}
	s.Requirements = append(s.Requirements, req)
	s.Updated = time.Now().UTC()
}

// RequirementList returns a copy of the collected requirements.
func (s *AgentState) RequirementList() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.Requirements))
	copy(out, s.Requirements)
	return out
}

// RecordToolCall appends a planned invocation and returns it with a fresh
// call ID. Recording is legal in any phase; phase gating is the
// orchestrator's concern.
func (s *AgentState) RecordToolCall(name string, args map[string]any) ToolCall {
	call := ToolCall{ID: NewID(), Name: name, Args: args}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ToolsCalled = append(s.ToolsCalled, call)
	s.Updated = time.Now().UTC()
	return call
}

// RecordToolResult stores a successful tool payload under its call ID.
func (s *AgentState) RecordToolResult(callID string, result any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ToolResults == nil {
		s.ToolResults = map[string]any{}
	}
	s.ToolResults[callID] = result
	s.Updated = time.Now().UTC()
}

// RecordToolError appends the persisted form of a failed tool call.
func (s *AgentState) RecordToolError(err *ToolInvocationError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ToolErrors = append(s.ToolErrors, ToolErrorRecord{
		CallID:    err.CallID,
		Tool:      err.Tool,
		Message:   err.Message,
		Timeout:   err.Timeout,
		Timestamp: time.Now().UTC(),
	})
	s.Updated = time.Now().UTC()
}

// RecordIssue appends an unresolved issue and returns it.
func (s *AgentState) RecordIssue(description string) Issue {
	issue := Issue{ID: NewID(), Description: description}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Issues = append(s.Issues, issue)
	s.Updated = time.Now().UTC()
	return issue
}

// ResolveIssue marks the issue with the given ID resolved.
func (s *AgentState) ResolveIssue(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Issues {
		if s.Issues[i].ID == id {
			s.Issues[i].Resolved = true
			s.Updated = time.Now().UTC()
			return
		}
	}
}

// OpenIssues returns the number of unresolved issues.
func (s *AgentState) OpenIssues() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.openIssuesLocked()
}

func (s *AgentState) openIssuesLocked() int {
	open := 0
	for _, issue := range s.Issues {
		if !issue.Resolved {
			open++
		}
	}
	return open
}

// RecordCitation appends a corpus reference used to ground the output.
func (s *AgentState) RecordCitation(c Citation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Citations = append(s.Citations, c)
	s.Updated = time.Now().UTC()
}

// CitationList returns a copy of the recorded citations in insertion order.
func (s *AgentState) CitationList() []Citation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Citation, len(s.Citations))
	copy(out, s.Citations)
	return out
}

// ToolErrorList returns a copy of the recorded tool errors in insertion order.
func (s *AgentState) ToolErrorList() []ToolErrorRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ToolErrorRecord, len(s.ToolErrors))
	copy(out, s.ToolErrors)
	return out
}

// SetAnalysis merges the provided key/value pairs into AnalysisResults.
func (s *AgentState) SetAnalysis(delta map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.AnalysisResults == nil {
		s.AnalysisResults = map[string]any{}
	}
	for k, v := range delta {
		s.AnalysisResults[k] = v
	}
	s.Updated = time.Now().UTC()
}

// SetStructuredOutput stores the assembled output. Populated only in the
// produce/done phases by the orchestrator.
func (s *AgentState) SetStructuredOutput(out *StructuredOutput) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.StructuredOutput = out
	s.Updated = time.Now().UTC()
}

// Output returns the structured output, nil until produced.
func (s *AgentState) Output() *StructuredOutput {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.StructuredOutput
}

// SetMetadata stores a free-form annotation on the state.
func (s *AgentState) SetMetadata(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Metadata == nil {
		s.Metadata = map[string]string{}
	}
	s.Metadata[key] = value
	s.Updated = time.Now().UTC()
}

// Clone returns a deep copy safe for independent mutation; stores persist
// clones so callers cannot alias internal state.
func (s *AgentState) Clone() *AgentState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clone := &AgentState{
		SessionID:          s.SessionID,
		Phase:              s.Phase,
		Requirements:       append([]string(nil), s.Requirements...),
		ToolsCalled:        append([]ToolCall(nil), s.ToolsCalled...),
		ToolResults:        make(map[string]any, len(s.ToolResults)),
		ToolErrors:         append([]ToolErrorRecord(nil), s.ToolErrors...),
		AnalysisResults:    make(map[string]any, len(s.AnalysisResults)),
		Issues:             append([]Issue(nil), s.Issues...),
		Citations:          append([]Citation(nil), s.Citations...),
		Metadata:           make(map[string]string, len(s.Metadata)),
		ResolveAttempts:    s.ResolveAttempts,
		MaxResolveAttempts: s.MaxResolveAttempts,
		Created:            s.Created,
		Updated:            s.Updated,
	}
	for k, v := range s.ToolResults {
		clone.ToolResults[k] = v
	}
	for k, v := range s.AnalysisResults {
		clone.AnalysisResults[k] = v
	}
	for k, v := range s.Metadata {
		clone.Metadata[k] = v
	}
	if s.StructuredOutput != nil {
		out := *s.StructuredOutput
		clone.StructuredOutput = &out
	}
	return clone
}
