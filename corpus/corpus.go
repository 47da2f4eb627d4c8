// Package corpus contains knowledge corpus implementations and an ingestion
// helper that embeds documents before storing them. The core.Corpus contract
// hands raw candidate chunks to the retrieval package, which performs all
// ranking; corpus implementations never score.
package corpus

import (
	"context"
	"fmt"
	"sync"

	"github.com/voyagent/voyagent/core"
)

// Metadata key used by InMemory to honor scope filters.
const partitionKey = "partition"

// InMemory is a process-local Corpus. Chunks are stored in insertion order
// and returned as defensive copies; reads are safe for concurrent invocation
// by many sessions.
type InMemory struct {
	mu     sync.RWMutex
	chunks []core.KnowledgeChunk
}

// NewInMemory creates a corpus pre-populated with the given chunks.
func NewInMemory(chunks ...core.KnowledgeChunk) *InMemory {
	c := &InMemory{chunks: make([]core.KnowledgeChunk, 0, len(chunks))}
	c.chunks = append(c.chunks, chunks...)
	return c
}

// Upsert inserts the chunk, replacing any existing chunk with the same ID.
func (c *InMemory) Upsert(chunk core.KnowledgeChunk) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.chunks {
		if c.chunks[i].ID == chunk.ID {
			c.chunks[i] = chunk
			return
		}
	}
	c.chunks = append(c.chunks, chunk)
}

// FetchCandidates returns the stored chunks. A non-empty scope restricts the
// result to chunks whose "partition" source metadata matches; "" returns
// everything.
func (c *InMemory) FetchCandidates(_ context.Context, scope string) ([]core.KnowledgeChunk, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]core.KnowledgeChunk, 0, len(c.chunks))
	for _, chunk := range c.chunks {
		if scope != "" && chunk.SourceMetadata[partitionKey] != scope {
			continue
		}
		out = append(out, chunk)
	}
	return out, nil
}

// Len returns the number of stored chunks.
func (c *InMemory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.chunks)
}

// Ingestor embeds document texts through an Embedder and upserts the
// resulting chunks into an InMemory corpus.
type Ingestor struct {
	embedder core.Embedder
	store    *InMemory
}

// NewIngestor creates an Ingestor writing into store.
func NewIngestor(embedder core.Embedder, store *InMemory) *Ingestor {
	return &Ingestor{embedder: embedder, store: store}
}

// Ingest embeds text and stores it under id. meta is copied onto the chunk's
// source metadata; set meta["partition"] to make the chunk scope-filterable.
func (i *Ingestor) Ingest(ctx context.Context, id, text string, meta map[string]string) (core.KnowledgeChunk, error) {
	embedding, err := i.embedder.Embed(ctx, text)
	if err != nil {
		return core.KnowledgeChunk{}, fmt.Errorf("embed %s: %w", id, err)
	}
	source := make(map[string]string, len(meta))
	for k, v := range meta {
		source[k] = v
	}
	chunk := core.KnowledgeChunk{ID: id, Text: text, Embedding: embedding, SourceMetadata: source}
	i.store.Upsert(chunk)
	return chunk, nil
}
