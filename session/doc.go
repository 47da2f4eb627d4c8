// Package session contains concrete core.SessionStore implementations: a
// volatile in-memory store suited to tests and demos, and a SQLite-backed
// store that persists AgentState snapshots as JSON for durability across
// restarts. Select an implementation at wiring time; the orchestrator only
// depends on core.SessionStore.
package session
