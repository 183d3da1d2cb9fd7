package rag

// IndexEntry is one embedded chunk held by an Index.
type IndexEntry struct {
	ChunkID   string    `json:"chunk_id"`
	Ordinal   int       `json:"ordinal"`
	Offset    int       `json:"offset"`
	Text      string    `json:"text"`
	Embedding []float64 `json:"embedding"`
}

// RetrievedChunk is a chunk plus similarity score.
type RetrievedChunk struct {
	Entry IndexEntry
	Score float64
}

// RetrievalResult includes context text and telemetry.
type RetrievalResult struct {
	Context       string
	Chunks        []RetrievedChunk
	RetrievalMs   int
	ContextTokens int
}
