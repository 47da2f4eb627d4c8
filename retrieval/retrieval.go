// Package retrieval ranks a supplied corpus of embedded knowledge chunks
// against a query embedding by cosine similarity. The retriever is a pure
// function of its inputs: identical (query, corpus, k, threshold) arguments
// always yield the identical ordered result.
package retrieval

import (
	"math"
	"sort"

	"github.com/voyagent/voyagent/core"
)

// Retriever selects the top-k chunks whose cosine similarity to the query
// meets a threshold. It holds no mutable state and is safe for concurrent
// use across sessions.
type Retriever struct{}

// New creates a Retriever.
func New() *Retriever { return &Retriever{} }

// Retrieve scores every chunk in corpus against queryEmbedding and returns
// up to k results with score >= threshold, sorted by descending score, ties
// broken by ascending chunk ID. An empty corpus or no chunk meeting the
// threshold yields an empty slice; the caller must treat "no grounding
// found" as a normal outcome.
//
// A chunk whose embedding dimensionality differs from the query is skipped
// and reported through the returned RetrievalError slice; ranking continues
// over the remaining chunks.
func (r *Retriever) Retrieve(queryEmbedding []float64, corpus []core.KnowledgeChunk, k int, threshold float64) ([]core.SimilarityResult, []*core.RetrievalError) {
	if k <= 0 || len(corpus) == 0 {
		return []core.SimilarityResult{}, nil
	}

	var errs []*core.RetrievalError
	results := make([]core.SimilarityResult, 0, len(corpus))
	for _, chunk := range corpus {
		if len(chunk.Embedding) != len(queryEmbedding) {
			errs = append(errs, &core.RetrievalError{
				Stage:   "rank",
				ChunkID: chunk.ID,
				Message: "embedding dimensionality mismatch",
			})
			continue
		}
		score := CosineSimilarity(queryEmbedding, chunk.Embedding)
		if score >= threshold {
			results = append(results, core.SimilarityResult{ChunkID: chunk.ID, Score: score})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ChunkID < results[j].ChunkID
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, errs
}

// CosineSimilarity computes dot(a,b) / (norm(a) * norm(b)). A zero-norm
// vector yields 0 for the pair rather than a division error. Callers must
// pass vectors of equal length.
func CosineSimilarity(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
