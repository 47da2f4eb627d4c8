package memory

import (
	"sync"
	"time"

	"github.com/voyagent/voyagent/core"
)

// Conversation roles stored alongside each entry.
const (
	RoleUser  = "user"
	RoleAgent = "agent"
)

// Entry is one immutable conversation turn. SizeEstimate is the cost of the
// entry in budget units (approximate tokens) computed once at append time.
type Entry struct {
	Role         string    `json:"role"`
	Content      string    `json:"content"`
	Timestamp    time.Time `json:"timestamp"`
	SizeEstimate int       `json:"size_estimate"`
}

// Options configure a Memory beyond its capacity.
type Options struct {
	// SizeEstimator computes the budget cost of a content string. Defaults
	// to EstimateTokens.
	SizeEstimator func(content string) int
}

// Memory is a capacity-bounded FIFO store of conversation entries. Length
// never exceeds the capacity fixed at construction; on overflow the oldest
// entries are dropped first. Entries are never reordered and are removed
// only by eviction or Clear.
type Memory struct {
	mu        sync.RWMutex
	entries   []Entry
	maxItems  int
	estimator func(string) int
}

// New creates a Memory holding at most maxItems entries. maxItems < 1 is a
// ConfigError.
func New(maxItems int, optFns ...func(o *Options)) (*Memory, error) {
	if maxItems < 1 {
		return nil, core.NewConfigError("maxItems", "capacity must be >= 1, got %d", maxItems)
	}
	opts := Options{SizeEstimator: EstimateTokens}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Memory{
		entries:   make([]Entry, 0, maxItems),
		maxItems:  maxItems,
		estimator: opts.SizeEstimator,
	}, nil
}

// Add appends a conversation turn with the current timestamp, evicting from
// the front until the store is back at capacity.
func (m *Memory) Add(role, content string) Entry {
	entry := Entry{
		Role:         role,
		Content:      content,
		Timestamp:    time.Now().UTC(),
		SizeEstimate: m.estimator(content),
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	if excess := len(m.entries) - m.maxItems; excess > 0 {
		// Shift in place so the backing array stays at capacity.
		copy(m.entries, m.entries[excess:])
		m.entries = m.entries[:m.maxItems]
	}
	return entry
}

// History returns the most recent limit entries in chronological order
// (oldest of the selected window first). limit <= 0 selects the full store;
// asking for more than available returns everything without error.
func (m *Memory) History(limit int) []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := len(m.entries)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]Entry, limit)
	copy(out, m.entries[n-limit:])
	return out
}

// ContextWindow greedily selects the most recent entries, walking backward
// from the newest and accumulating SizeEstimate until adding the next entry
// would exceed budget. The selection is returned in chronological order.
// If even the single newest entry exceeds the budget it is returned alone,
// so a non-empty store always yields at least minimal context. budget <= 0
// returns an empty window.
func (m *Memory) ContextWindow(budget int) []Entry {
	if budget <= 0 {
		return []Entry{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.entries) == 0 {
		return []Entry{}
	}
	total := 0
	start := len(m.entries)
	for i := len(m.entries) - 1; i >= 0; i-- {
		if total+m.entries[i].SizeEstimate > budget {
			break
		}
		total += m.entries[i].SizeEstimate
		start = i
	}
	if start == len(m.entries) {
		// Newest entry alone blows the budget; return it anyway.
		start = len(m.entries) - 1
	}
	out := make([]Entry, len(m.entries)-start)
	copy(out, m.entries[start:])
	return out
}

// Len returns the number of retained entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Cap returns the fixed capacity.
func (m *Memory) Cap() int { return m.maxItems }

// Clear removes every entry. The capacity is unchanged.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = m.entries[:0]
}

// EstimateTokens approximates the token cost of a content string. Four bytes
// per token tracks common BPE vocabularies closely enough for budgeting;
// every entry costs at least one unit.
func EstimateTokens(content string) int {
	n := len(content) / 4
	if n < 1 {
		n = 1
	}
	return n
}
