package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/voyagent/voyagent/core"
	"github.com/voyagent/voyagent/logging"
	"github.com/voyagent/voyagent/memory"
)

// run carries the request-scoped working set for one HandleQuery execution:
// the plan awaiting execution, the issue-to-retry mapping, and the flags
// that mark the output incomplete.
type run struct {
	orchestrator *Orchestrator
	state        *core.AgentState
	memory       *memory.Memory
	query        string
	logger       logging.Logger

	pending    []core.ToolCall          // calls to dispatch at the next execute phase
	issueCalls map[string]core.ToolCall // open issue ID -> call to retry
	forced     bool                     // deadline forced the produce phase
	degraded   bool                     // retrieval could not run fully
}

// clarify collects requirements from the query and the recent context
// window and records them on the state.
func (r *run) clarify() {
	window := r.memory.ContextWindow(r.orchestrator.cfg.Memory.ContextBudget)
	contextTexts := make([]string, 0, len(window))
	for _, entry := range window {
		if entry.Content != r.query {
			contextTexts = append(contextTexts, entry.Content)
		}
	}
	for _, req := range extractRequirements(r.query, contextTexts) {
		r.state.AddRequirement(req)
	}
	r.logger.Debug("clarify.done", "requirements", len(r.state.RequirementList()))
}

// plan asks the configured planner for tool calls, falling back to the
// heuristic planner when it errors, and stages the plan for execution.
func (r *run) plan(ctx context.Context) {
	available := r.orchestrator.registry.Names()
	requirements := r.state.RequirementList()

	planned, err := r.orchestrator.planner.Plan(ctx, requirements, available)
	if err != nil {
		r.logger.Warn("plan.failed", "error", err.Error())
		planned, _ = r.orchestrator.fallback.Plan(ctx, requirements, available)
	}

	r.pending = r.pending[:0]
	for _, call := range planned {
		r.pending = append(r.pending, r.state.RecordToolCall(call.Tool, call.Args))
	}
	r.logger.Info("plan.done", "calls", len(r.pending))
}

// executeTools fans out the pending calls concurrently, bounded by the
// configured semaphore and per-tool timeout. Each call's success or failure
// is recorded independently; one tool failing never aborts its siblings.
func (r *run) executeTools(ctx context.Context) {
	calls := r.pending
	r.pending = nil
	if len(calls) == 0 {
		return
	}

	sem := make(chan struct{}, r.orchestrator.cfg.Orchestrator.MaxConcurrentTools)
	var wg sync.WaitGroup
	for _, call := range calls {
		wg.Add(1)
		go func(call core.ToolCall) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			start := time.Now()
			result, invErr := r.invokeWithTimeout(ctx, call)
			if cl, ok := r.logger.(*logging.ConciergeLogger); ok {
				var logErr error
				if invErr != nil {
					logErr = invErr
				}
				cl.LogToolCall(call.Name, call.ID, time.Since(start), logErr)
			}
			if invErr != nil {
				r.state.RecordToolError(invErr)
				return
			}
			r.state.RecordToolResult(call.ID, result)
		}(call)
	}
	wg.Wait()
}

// invokeWithTimeout runs one registry invocation under the per-tool timeout.
// The inner goroutine lets the orchestrator abandon tools that ignore
// context cancellation; an abandoned call is recorded as a timeout.
func (r *run) invokeWithTimeout(ctx context.Context, call core.ToolCall) (any, *core.ToolInvocationError) {
	callCtx, cancel := context.WithTimeout(ctx, r.orchestrator.cfg.Orchestrator.ToolTimeout)
	defer cancel()

	type outcome struct {
		result any
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := r.orchestrator.registry.Invoke(callCtx, call.Name, call.Args)
		done <- outcome{result: result, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			return nil, &core.ToolInvocationError{
				Tool:    call.Name,
				CallID:  call.ID,
				Message: out.err.Error(),
				Timeout: errors.Is(out.err, context.DeadlineExceeded),
			}
		}
		return out.result, nil
	case <-callCtx.Done():
		return nil, &core.ToolInvocationError{
			Tool:    call.Name,
			CallID:  call.ID,
			Message: callCtx.Err().Error(),
			Timeout: errors.Is(callCtx.Err(), context.DeadlineExceeded),
		}
	}
}

// analyze embeds the accumulated requirements text, ranks the corpus against
// it, and records the resulting citations. Every failure in this path
// degrades retrieval instead of aborting the request.
func (r *run) analyze(ctx context.Context) {
	o := r.orchestrator
	analysis := map[string]any{"citations": 0, "degraded": false}
	defer func() { r.state.SetAnalysis(analysis) }()

	if o.embedder == nil || o.corpus == nil {
		r.degraded = true
		analysis["degraded"] = true
		r.logger.Debug("analyze.skipped", "reason", "no embedder or corpus configured")
		return
	}

	queryText := strings.Join(r.state.RequirementList(), "\n")
	queryEmbedding, err := o.embedder.Embed(ctx, queryText)
	if err != nil {
		r.recordRetrievalError(analysis, &core.RetrievalError{Stage: "embed", Message: err.Error()})
		return
	}

	candidates, err := o.corpus.FetchCandidates(ctx, o.cfg.Retrieval.Scope)
	if err != nil {
		r.recordRetrievalError(analysis, &core.RetrievalError{Stage: "corpus", Message: err.Error()})
		return
	}

	start := time.Now()
	results, rankErrs := o.retriever.Retrieve(queryEmbedding, candidates, o.cfg.Retrieval.TopK, o.cfg.Retrieval.Threshold)
	for _, rankErr := range rankErrs {
		r.recordRetrievalError(analysis, rankErr)
	}

	byID := make(map[string]core.KnowledgeChunk, len(candidates))
	for _, chunk := range candidates {
		byID[chunk.ID] = chunk
	}
	best := 0.0
	for _, res := range results {
		if res.Score > best {
			best = res.Score
		}
		r.state.RecordCitation(core.Citation{
			ChunkID: res.ChunkID,
			Score:   res.Score,
			Source:  byID[res.ChunkID].SourceMetadata,
		})
	}
	analysis["citations"] = len(results)
	analysis["best_score"] = best
	if cl, ok := r.logger.(*logging.ConciergeLogger); ok {
		cl.LogRetrieval(len(results), len(rankErrs), time.Since(start))
	}
}

// recordRetrievalError accumulates a retrieval failure on the analysis map
// and flags the run degraded.
func (r *run) recordRetrievalError(analysis map[string]any, rerr *core.RetrievalError) {
	r.degraded = true
	analysis["degraded"] = true
	existing, _ := analysis["errors"].([]string)
	analysis["errors"] = append(existing, rerr.Error())
	r.logger.Warn("retrieval.error", "stage", rerr.Stage, "error", rerr.Message)
}

// evaluateIssues inspects tool errors: calls that later succeeded get their
// issues resolved, calls still without a result get an open issue and a
// staged retry. The state machine decides from the open-issue count whether
// to loop back to execution or proceed to output.
func (r *run) evaluateIssues() {
	if r.issueCalls == nil {
		r.issueCalls = make(map[string]core.ToolCall)
	}

	// Resolve issues whose retried tool now has a result.
	for issueID, call := range r.issueCalls {
		if r.callSucceeded(call.Name) {
			r.state.ResolveIssue(issueID)
			delete(r.issueCalls, issueID)
		}
	}

	// Open issues for failed calls not already tracked, staging a retry.
	tracked := make(map[string]bool, len(r.issueCalls))
	for _, call := range r.issueCalls {
		tracked[call.Name] = true
	}
	r.pending = r.pending[:0]
	for _, rec := range r.state.ToolErrorList() {
		if tracked[rec.Tool] || r.callSucceeded(rec.Tool) {
			continue
		}
		issue := r.state.RecordIssue(fmt.Sprintf("tool %s failed: %s", rec.Tool, rec.Message))
		retry := r.state.RecordToolCall(rec.Tool, r.argsFor(rec.CallID))
		r.issueCalls[issue.ID] = retry
		r.pending = append(r.pending, retry)
		tracked[rec.Tool] = true
	}
	// Retries staged for issues still open from a previous round.
	for issueID, call := range r.issueCalls {
		if r.containsPending(call.ID) {
			continue
		}
		retry := r.state.RecordToolCall(call.Name, call.Args)
		r.issueCalls[issueID] = retry
		r.pending = append(r.pending, retry)
	}

	r.logger.Info("resolve.evaluated", "open_issues", r.state.OpenIssues(), "attempts", r.state.ResolveAttempts)
}

func (r *run) containsPending(callID string) bool {
	for _, call := range r.pending {
		if call.ID == callID {
			return true
		}
	}
	return false
}

// callSucceeded reports whether any recorded call of the named tool has a
// result.
func (r *run) callSucceeded(toolName string) bool {
	snapshot := r.state.Clone()
	for _, call := range snapshot.ToolsCalled {
		if call.Name != toolName {
			continue
		}
		if _, ok := snapshot.ToolResults[call.ID]; ok {
			return true
		}
	}
	return false
}

// argsFor returns the original arguments of the call that produced a tool
// error, so retries replay the same invocation.
func (r *run) argsFor(callID string) map[string]any {
	snapshot := r.state.Clone()
	for _, call := range snapshot.ToolsCalled {
		if call.ID == callID {
			return call.Args
		}
	}
	return nil
}
