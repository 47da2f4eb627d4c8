package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvanceFullLifecycle(t *testing.T) {
	state := NewAgentState("sess-1", 2)
	assert.Equal(t, PhaseInit, state.CurrentPhase())

	// With no issues the lifecycle is exactly seven advances.
	for i := 0; i < 7; i++ {
		require.NoError(t, state.Advance())
	}
	assert.Equal(t, PhaseDone, state.CurrentPhase())
	assert.Zero(t, state.ResolveAttempts)
}

func TestAdvancePastDoneIsStateError(t *testing.T) {
	state := NewAgentState("sess-1", 2)
	for i := 0; i < 7; i++ {
		require.NoError(t, state.Advance())
	}

	before := state.Clone()
	err := state.Advance()

	var stateErr *StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, "sess-1", stateErr.SessionID)
	assert.Equal(t, PhaseDone, stateErr.Phase)

	// The failed advance must not mutate anything.
	assert.Equal(t, before.Phase, state.CurrentPhase())
	assert.Equal(t, before.Updated, state.Clone().Updated)
}

func TestResolveLoopIsBounded(t *testing.T) {
	state := NewAgentState("sess-1", 2)
	for state.CurrentPhase() != PhaseResolveIssues {
		require.NoError(t, state.Advance())
	}
	issue := state.RecordIssue("weather tool unavailable")

	// First two encounters loop back; the issue stays open throughout.
	require.NoError(t, state.Advance())
	assert.Equal(t, PhaseExecuteTools, state.CurrentPhase())
	assert.Equal(t, 1, state.ResolveAttempts)

	require.NoError(t, state.Advance()) // -> analyze
	require.NoError(t, state.Advance()) // -> resolve
	require.NoError(t, state.Advance())
	assert.Equal(t, PhaseExecuteTools, state.CurrentPhase())
	assert.Equal(t, 2, state.ResolveAttempts)

	// Budget exhausted: the third encounter proceeds despite the open issue.
	require.NoError(t, state.Advance()) // -> analyze
	require.NoError(t, state.Advance()) // -> resolve
	require.NoError(t, state.Advance())
	assert.Equal(t, PhaseProduceOutput, state.CurrentPhase())
	assert.Equal(t, 2, state.ResolveAttempts)

	// Each loop-back bumped the open issue's retry counter.
	clone := state.Clone()
	require.Len(t, clone.Issues, 1)
	assert.Equal(t, issue.ID, clone.Issues[0].ID)
	assert.Equal(t, 2, clone.Issues[0].Retries)
}

func TestResolvedIssuesDoNotLoop(t *testing.T) {
	state := NewAgentState("sess-1", 2)
	for state.CurrentPhase() != PhaseResolveIssues {
		require.NoError(t, state.Advance())
	}
	issue := state.RecordIssue("transient failure")
	state.ResolveIssue(issue.ID)
	assert.Zero(t, state.OpenIssues())

	require.NoError(t, state.Advance())
	assert.Equal(t, PhaseProduceOutput, state.CurrentPhase())
}

func TestForceOutputIsForwardOnly(t *testing.T) {
	state := NewAgentState("sess-1", 2)
	require.NoError(t, state.Advance()) // clarify

	assert.True(t, state.ForceOutput())
	assert.Equal(t, PhaseProduceOutput, state.CurrentPhase())

	// Already at (or past) produce: no-op.
	assert.False(t, state.ForceOutput())
	require.NoError(t, state.Advance())
	assert.False(t, state.ForceOutput())
	assert.Equal(t, PhaseDone, state.CurrentPhase())
}

func TestAddRequirementSetSemantics(t *testing.T) {
	state := NewAgentState("sess-1", 2)
	state.AddRequirement("destination: tokyo")
	state.AddRequirement("dates: 2026-04-02 to 2026-04-09")
	state.AddRequirement("destination: tokyo")
	state.AddRequirement("")

	assert.Equal(t, []string{"destination: tokyo", "dates: 2026-04-02 to 2026-04-09"}, state.RequirementList())
}

func TestRecordToolCallAndResult(t *testing.T) {
	state := NewAgentState("sess-1", 2)
	call := state.RecordToolCall("get_weather", map[string]any{"city": "Tokyo"})
	require.NotEmpty(t, call.ID)

	state.RecordToolResult(call.ID, map[string]any{"temperature_c": 18.5})
	state.RecordToolError(&ToolInvocationError{Tool: "convert_fx", CallID: "missing", Message: "deadline exceeded", Timeout: true})

	clone := state.Clone()
	require.Len(t, clone.ToolsCalled, 1)
	assert.Equal(t, "get_weather", clone.ToolsCalled[0].Name)
	assert.Contains(t, clone.ToolResults, call.ID)

	errs := state.ToolErrorList()
	require.Len(t, errs, 1)
	assert.True(t, errs[0].Timeout)
	assert.Equal(t, "convert_fx", errs[0].Tool)
	assert.False(t, errs[0].Timestamp.IsZero())
}

func TestCloneIsIndependent(t *testing.T) {
	state := NewAgentState("sess-1", 2)
	state.AddRequirement("destination: lisbon")
	call := state.RecordToolCall("web_search", nil)
	state.RecordToolResult(call.ID, "ok")
	state.RecordCitation(Citation{ChunkID: "c1", Score: 0.9})
	state.SetMetadata("channel", "chat")

	clone := state.Clone()
	clone.Requirements[0] = "mutated"
	clone.ToolResults[call.ID] = "mutated"
	clone.Metadata["channel"] = "mutated"
	clone.Citations[0].ChunkID = "mutated"

	assert.Equal(t, "destination: lisbon", state.RequirementList()[0])
	assert.Equal(t, "ok", state.Clone().ToolResults[call.ID])
	assert.Equal(t, "chat", state.Clone().Metadata["channel"])
	assert.Equal(t, "c1", state.CitationList()[0].ChunkID)
}

func TestAgentStateJSONRoundTrip(t *testing.T) {
	state := NewAgentState("sess-1", 2)
	require.NoError(t, state.Advance())
	state.AddRequirement("destination: tokyo")

	data, err := json.Marshal(state.Clone())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"phase":"clarify_requirements"`)

	var restored AgentState
	require.NoError(t, json.Unmarshal(data, &restored))
	assert.Equal(t, PhaseClarifyRequirements, restored.Phase)
	assert.Equal(t, []string{"destination: tokyo"}, restored.Requirements)
	assert.Equal(t, 2, restored.MaxResolveAttempts)
}

func TestErrorMessages(t *testing.T) {
	assert.Contains(t, NewConfigError("memory.max_items", "must be >= 1, got %d", 0).Error(), "memory.max_items")
	assert.Contains(t, (&StateError{SessionID: "s", Phase: PhaseDone, Message: "frozen"}).Error(), "done")
	assert.Contains(t, (&ToolInvocationError{Tool: "get_weather", Message: "boom"}).Error(), "get_weather")
	assert.Contains(t, (&RetrievalError{Stage: "embed", Message: "dim mismatch"}).Error(), "embed")
	assert.Contains(t, (&ValidationError{Missing: []string{"destination"}, Message: "missing"}).Error(), "missing")
}
