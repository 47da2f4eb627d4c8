package core

import (
	"encoding/json"
	"fmt"
)

// Phase names a stage in the fixed processing sequence a query passes
// through. Phases are ordered; apart from the single permitted backward edge
// (ResolveIssues -> ExecuteTools, bounded by AgentState.MaxResolveAttempts)
// progression is strictly monotonic. PhaseDone is terminal.
type Phase int

const (
	// PhaseInit is the freshly created, not yet started state.
	PhaseInit Phase = iota
	// PhaseClarifyRequirements collects and validates the request requirements.
	PhaseClarifyRequirements
	// PhasePlanTools decides which external tools to invoke.
	PhasePlanTools
	// PhaseExecuteTools dispatches the planned tool calls.
	PhaseExecuteTools
	// PhaseAnalyzeResults retrieves grounding evidence and records citations.
	PhaseAnalyzeResults
	// PhaseResolveIssues evaluates tool errors and may loop back to execution.
	PhaseResolveIssues
	// PhaseProduceOutput assembles the structured output from whatever data
	// is present; partial data is acceptable and marked as such.
	PhaseProduceOutput
	// PhaseDone freezes the state. Advancing past it is a StateError.
	PhaseDone
)

var phaseNames = map[Phase]string{
	PhaseInit:                "init",
	PhaseClarifyRequirements: "clarify_requirements",
	PhasePlanTools:           "plan_tools",
	PhaseExecuteTools:        "execute_tools",
	PhaseAnalyzeResults:      "analyze_results",
	PhaseResolveIssues:       "resolve_issues",
	PhaseProduceOutput:       "produce_structured_output",
	PhaseDone:                "done",
}

// String returns the snake_case phase name used in logs and persistence.
func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Terminal reports whether the phase admits no further transitions.
func (p Phase) Terminal() bool { return p == PhaseDone }

// MarshalJSON serializes the phase as its string name so persisted state
// stays readable and stable across reorderings of the constant block.
func (p Phase) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON accepts the string names produced by MarshalJSON.
func (p *Phase) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for phase, name := range phaseNames {
		if name == s {
			*p = phase
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", s)
}

// nextPhase is the single transition table for the lifecycle. It maps the
// current phase plus the resolve-loop inputs to the successor phase. The only
// cycle it can produce is ResolveIssues -> ExecuteTools, and only while
// resolveAttempts < maxResolveAttempts; once the bound is reached the next
// ResolveIssues transition forces PhaseProduceOutput regardless of open
// issues.
func nextPhase(p Phase, openIssues bool, resolveAttempts, maxResolveAttempts int) Phase {
	if p == PhaseResolveIssues {
		if openIssues && resolveAttempts < maxResolveAttempts {
			return PhaseExecuteTools
		}
		return PhaseProduceOutput
	}
	return p + 1
}
