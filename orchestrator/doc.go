// Package orchestrator composes the phase state machine, the bounded
// conversation memory and the similarity retriever with the external tool
// registry, embedding service and knowledge corpus to drive one request from
// Init to Done.
//
// Concurrency model: each session is owned by exactly one executing request
// at a time; a second HandleQuery for the same session blocks on the
// session's mutex until the first completes. Different sessions run fully in
// parallel. Within a request the only concurrency is the tool fan-out in the
// execute phase, bounded by a semaphore and a per-tool timeout.
//
// Failure model: individual tool, embedding and corpus failures are caught
// at the call site and recorded on the AgentState; they never abort a
// request. Only a ConfigError (bad construction) or StateError (illegal
// transition) fails HandleQuery itself, and the caller otherwise always
// receives a structured result, flagged incomplete when assembled from
// partial data.
package orchestrator
