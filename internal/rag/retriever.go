package rag

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mwiater/paper2pod/internal/logging"
)

const (
	// DefaultTopK is used when a search asks for zero or fewer results.
	DefaultTopK = 4

	queryCacheSize = 128
)

// ErrEmptyIndex is returned when an index is built from no chunks.
var ErrEmptyIndex = errors.New("rag index contains no entries")

// Index is an in-memory, read-only similarity index over one document.
type Index struct {
	docID      string
	entries    []IndexEntry
	embedder   Embedder
	queryCache *lru.Cache[string, []float64]
}

// BuildIndex embeds every chunk and returns the index. Any embedding failure
// aborts the build; there is no local fallback.
func BuildIndex(ctx context.Context, embedder Embedder, chunks []Chunk) (*Index, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder is nil")
	}
	if len(chunks) == 0 {
		return nil, ErrEmptyIndex
	}

	start := time.Now()
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	dim := len(vectors[0])
	docID := uuid.NewString()[:8]
	entries := make([]IndexEntry, len(chunks))
	for i, c := range chunks {
		if len(vectors[i]) != dim {
			return nil, fmt.Errorf("chunk %d embedding has dimension %d, expected %d", i, len(vectors[i]), dim)
		}
		entries[i] = IndexEntry{
			ChunkID:   fmt.Sprintf("%s:%d", docID, c.Ordinal),
			Ordinal:   c.Ordinal,
			Offset:    c.Offset,
			Text:      c.Text,
			Embedding: vectors[i],
		}
	}

	cache, err := lru.New[string, []float64](queryCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create query cache: %w", err)
	}

	logging.LogEvent("[RAG] indexed %d chunks (dim=%d) in %s", len(entries), dim, time.Since(start).Truncate(time.Millisecond))
	return &Index{docID: docID, entries: entries, embedder: embedder, queryCache: cache}, nil
}

// Len returns the number of indexed chunks.
func (ix *Index) Len() int { return len(ix.entries) }

// Search embeds query and returns at most k chunks ordered by decreasing cosine similarity.
func (ix *Index) Search(ctx context.Context, query string, k int) ([]RetrievedChunk, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query is empty")
	}
	if k <= 0 {
		k = DefaultTopK
	}

	queryVec, err := ix.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	chunks := scoreEntries(ix.entries, queryVec)
	if k > len(chunks) {
		k = len(chunks)
	}
	return chunks[:k], nil
}

// Retrieve runs Search and renders the selected chunks as a context block.
func (ix *Index) Retrieve(ctx context.Context, query string, k, maxTokens int) (RetrievalResult, error) {
	start := time.Now()
	selected, err := ix.Search(ctx, query, k)
	if err != nil {
		return RetrievalResult{}, err
	}
	context, contextTokens := FormatContext(selected, maxTokens)
	return RetrievalResult{
		Context:       context,
		Chunks:        selected,
		RetrievalMs:   int(time.Since(start) / time.Millisecond),
		ContextTokens: contextTokens,
	}, nil
}

// Query returns the texts of the top-k chunks for query, best first.
func (ix *Index) Query(ctx context.Context, query string, k int) ([]string, error) {
	selected, err := ix.Search(ctx, query, k)
	if err != nil {
		return nil, err
	}
	texts := make([]string, len(selected))
	for i, c := range selected {
		texts[i] = c.Entry.Text
	}
	return texts, nil
}

func (ix *Index) embedQuery(ctx context.Context, query string) ([]float64, error) {
	if vec, ok := ix.queryCache.Get(query); ok {
		return vec, nil
	}
	vectors, err := ix.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for one query", len(vectors))
	}
	ix.queryCache.Add(query, vectors[0])
	return vectors[0], nil
}

func scoreEntries(entries []IndexEntry, queryVec []float64) []RetrievedChunk {
	chunks := make([]RetrievedChunk, 0, len(entries))
	queryNorm := vectorNorm(queryVec)
	for _, entry := range entries {
		if len(entry.Embedding) != len(queryVec) {
			continue
		}
		score := cosineSimilarity(queryVec, entry.Embedding, queryNorm)
		chunks = append(chunks, RetrievedChunk{
			Entry: entry,
			Score: score,
		})
	}

	sort.SliceStable(chunks, func(i, j int) bool {
		return chunks[i].Score > chunks[j].Score
	})

	return chunks
}

func cosineSimilarity(a, b []float64, normA float64) float64 {
	if normA == 0 {
		return 0
	}
	normB := vectorNorm(b)
	if normB == 0 {
		return 0
	}
	dot := 0.0
	for i := range a {
		dot += a[i] * b[i]
	}
	return dot / (normA * normB)
}

func vectorNorm(v []float64) float64 {
	sum := 0.0
	for _, val := range v {
		sum += val * val
	}
	return math.Sqrt(sum)
}
