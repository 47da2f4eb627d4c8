// Package memory implements the bounded, ordered conversation store owned by
// each session. It holds at most a fixed number of turns, evicts
// deterministically oldest-first, and assembles context windows under a size
// budget. There is exactly one Memory per session; the orchestrator
// serializes access per session, and the store additionally guards itself
// with a mutex so history reads stay safe.
package memory
