package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyagent/voyagent/core"
)

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float64{1, 2, 3}, []float64{1, 2, 3}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float64{1, 0}, []float64{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity([]float64{1, 0}, []float64{-1, 0}), 1e-9)
	assert.InDelta(t, 1.0, CosineSimilarity([]float64{1, 0}, []float64{5, 0}), 1e-9, "magnitude-invariant")
	assert.Zero(t, CosineSimilarity([]float64{0, 0}, []float64{1, 2}))
	assert.Zero(t, CosineSimilarity([]float64{1, 2}, []float64{0, 0}))
}

func chunk(id string, embedding ...float64) core.KnowledgeChunk {
	return core.KnowledgeChunk{ID: id, Text: "text " + id, Embedding: embedding}
}

func TestRetrieveTopKWithThreshold(t *testing.T) {
	r := New()
	query := []float64{1, 0}
	corpus := []core.KnowledgeChunk{
		chunk("a", 0.9, 0.4359),  // ~0.9
		chunk("b", 0.4, 0.9165),  // ~0.4, below threshold
		chunk("c", 0.9, -0.4359), // ~0.9, ties with a
	}

	results, errs := r.Retrieve(query, corpus, 2, 0.5)
	assert.Empty(t, errs)
	require.Len(t, results, 2)

	// Equal scores tie-break by ascending chunk ID.
	assert.Equal(t, "a", results[0].ChunkID)
	assert.Equal(t, "c", results[1].ChunkID)
	assert.InDelta(t, results[0].Score, results[1].Score, 1e-6)
	assert.GreaterOrEqual(t, results[0].Score, 0.5)
}

func TestRetrieveEmptyOutcomes(t *testing.T) {
	r := New()

	results, errs := r.Retrieve([]float64{1, 0}, nil, 5, 0.5)
	assert.Empty(t, results)
	assert.Empty(t, errs)

	results, errs = r.Retrieve([]float64{1, 0}, []core.KnowledgeChunk{chunk("a", 0, 1)}, 5, 0.5)
	assert.Empty(t, results, "nothing meets the threshold")
	assert.Empty(t, errs)

	results, _ = r.Retrieve([]float64{1, 0}, []core.KnowledgeChunk{chunk("a", 1, 0)}, 0, 0.5)
	assert.Empty(t, results, "k=0 selects nothing")
}

func TestRetrieveSkipsDimensionMismatch(t *testing.T) {
	r := New()
	corpus := []core.KnowledgeChunk{
		chunk("good", 1, 0),
		chunk("bad", 1, 0, 0), // wrong dimensionality
	}

	results, errs := r.Retrieve([]float64{1, 0}, corpus, 5, 0.5)

	require.Len(t, results, 1)
	assert.Equal(t, "good", results[0].ChunkID)

	require.Len(t, errs, 1)
	assert.Equal(t, "rank", errs[0].Stage)
	assert.Equal(t, "bad", errs[0].ChunkID)
}

func TestRetrieveIsDeterministic(t *testing.T) {
	r := New()
	query := []float64{0.3, 0.7, 0.2}
	corpus := []core.KnowledgeChunk{
		chunk("x", 0.3, 0.7, 0.2),
		chunk("y", 0.1, 0.9, 0.1),
		chunk("z", 0.5, 0.5, 0.5),
	}

	first, _ := r.Retrieve(query, corpus, 3, 0.0)
	for i := 0; i < 10; i++ {
		again, _ := r.Retrieve(query, corpus, 3, 0.0)
		assert.Equal(t, first, again)
	}
}
