package core

// KnowledgeChunk is one embedded snippet of the knowledge corpus. Chunks are
// owned by the corpus collaborator and borrowed read-only by the retriever
// for the duration of a ranking call.
type KnowledgeChunk struct {
	ID             string            `json:"id"`
	Text           string            `json:"text"`
	Embedding      []float64         `json:"embedding"`
	SourceMetadata map[string]string `json:"source_metadata,omitempty"`
}

// SimilarityResult scores one chunk against a query embedding. Produced per
// retrieval call and never persisted.
type SimilarityResult struct {
	ChunkID string  `json:"chunk_id"`
	Score   float64 `json:"score"`
}
