// Package core defines the domain model shared by every voyagent package:
// the request phase lifecycle, the per-session AgentState record, knowledge
// chunk and similarity types, the structured trip output, the error taxonomy,
// and the collaborator interfaces (session store, embedder, corpus) that
// external capabilities implement.
//
// Everything in this package is session-scoped; there is no process-global
// mutable state. AgentState guards its fields with an internal mutex so a
// store may hand the same instance to the single orchestrator execution that
// owns the session.
package core
