package rag

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/mwiater/paper2pod/internal/appconfig"
)

// keywordEmbedder maps text onto a tiny keyword space so similarity is predictable.
type keywordEmbedder struct {
	calls atomic.Int32
	fail  bool
}

var keywords = []string{"transformer", "attention", "dataset", "author"}

func (e *keywordEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	e.calls.Add(1)
	if e.fail {
		return nil, errors.New("embedding service unavailable")
	}
	out := make([][]float64, len(texts))
	for i, text := range texts {
		lower := strings.ToLower(text)
		vec := make([]float64, len(keywords))
		for j, kw := range keywords {
			vec[j] = float64(strings.Count(lower, kw))
		}
		out[i] = vec
	}
	return out, nil
}

func TestScoreEntriesOrdersBySimilarity(t *testing.T) {
	entries := []IndexEntry{
		{ChunkID: "a", Embedding: []float64{1, 0}},
		{ChunkID: "b", Embedding: []float64{0, 1}},
		{ChunkID: "c", Embedding: []float64{1, 1}},
	}
	query := []float64{1, 0}

	chunks := scoreEntries(entries, query)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if chunks[0].Entry.ChunkID != "a" || chunks[1].Entry.ChunkID != "c" {
		t.Fatalf("unexpected order: %s, %s", chunks[0].Entry.ChunkID, chunks[1].Entry.ChunkID)
	}
}

func TestIndexSearchReturnsAtMostKByDecreasingScore(t *testing.T) {
	chunks := []Chunk{
		{Ordinal: 0, Text: "dataset dataset"},
		{Ordinal: 1, Text: "attention attention transformer"},
		{Ordinal: 2, Text: "the author thanks reviewers"},
		{Ordinal: 3, Text: "attention is a dataset trick"},
	}
	embedder := &keywordEmbedder{}
	index, err := BuildIndex(context.Background(), embedder, chunks)
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	if index.Len() != 4 {
		t.Fatalf("expected 4 entries, got %d", index.Len())
	}

	results, err := index.Search(context.Background(), "attention", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Score < results[1].Score {
		t.Fatalf("results not ordered by decreasing score: %v", results)
	}
	if results[0].Entry.Ordinal != 1 {
		t.Fatalf("expected chunk 1 first, got %d", results[0].Entry.Ordinal)
	}

	all, err := index.Search(context.Background(), "attention", 50)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected k clamped to 4, got %d", len(all))
	}
}

func TestIndexCachesQueryEmbeddings(t *testing.T) {
	embedder := &keywordEmbedder{}
	index, err := BuildIndex(context.Background(), embedder, []Chunk{{Text: "author"}})
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	before := embedder.calls.Load()
	for i := 0; i < 3; i++ {
		if _, err := index.Query(context.Background(), "who is the author", 1); err != nil {
			t.Fatalf("Query: %v", err)
		}
	}
	if got := embedder.calls.Load() - before; got != 1 {
		t.Fatalf("expected one query embedding call, got %d", got)
	}
}

func TestBuildIndexFailsFast(t *testing.T) {
	_, err := BuildIndex(context.Background(), &keywordEmbedder{fail: true}, []Chunk{{Text: "x"}})
	if err == nil || !strings.Contains(err.Error(), "unavailable") {
		t.Fatalf("expected embedding failure to abort, got %v", err)
	}
	if _, err := BuildIndex(context.Background(), &keywordEmbedder{}, nil); !errors.Is(err, ErrEmptyIndex) {
		t.Fatalf("expected ErrEmptyIndex, got %v", err)
	}
}

func TestEmbeddingClientOrdersByIndex(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req struct {
			Model string   `json:"model"`
			Input []string `json:"input"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "text-embedding-3-small" || len(req.Input) != 2 {
			t.Errorf("unexpected request: %+v", req)
		}
		_, _ = w.Write([]byte(`{"data":[{"index":1,"embedding":[0,1]},{"index":0,"embedding":[1,0]}]}`))
	}))
	defer server.Close()

	cfg := appconfig.Config{OpenAIBaseURL: server.URL, EmbeddingModel: "text-embedding-3-small", TimeoutSeconds: 5}
	vectors, err := NewEmbeddingClient(cfg).Embed(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if vectors[0][0] != 1 || vectors[1][1] != 1 {
		t.Fatalf("vectors not ordered by index: %v", vectors)
	}
}

func TestEmbeddingClientSurfacesErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg := appconfig.Config{OpenAIBaseURL: server.URL, EmbeddingModel: "m", TimeoutSeconds: 5}
	if _, err := NewEmbeddingClient(cfg).Embed(context.Background(), []string{"x"}); err == nil {
		t.Fatal("expected error for 503")
	}
}

func TestSearchToolValidatesArguments(t *testing.T) {
	index, err := BuildIndex(context.Background(), &keywordEmbedder{}, []Chunk{
		{Ordinal: 0, Text: "the author is Ada Lovelace"},
		{Ordinal: 1, Text: "dataset details"},
	})
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	def, exec := SearchTool(index, 1)
	if def.Name != SearchToolName {
		t.Fatalf("unexpected tool name %q", def.Name)
	}

	out, err := exec(context.Background(), SearchToolName, map[string]any{"query": "author"})
	if err != nil {
		t.Fatalf("exec: %v", err)
	}
	if out != "the author is Ada Lovelace" {
		t.Fatalf("unexpected tool output %q", out)
	}

	out, err = exec(context.Background(), SearchToolName, map[string]any{"q": "author"})
	if err != nil {
		t.Fatalf("invalid args should not error: %v", err)
	}
	if !strings.HasPrefix(out, "invalid arguments") {
		t.Fatalf("expected validation message, got %q", out)
	}

	out, err = exec(context.Background(), SearchToolName, map[string]any{"query": "   "})
	if err != nil {
		t.Fatalf("blank query should not error: %v", err)
	}
	if out != "invalid arguments: query is empty" {
		t.Fatalf("expected blank query message, got %q", out)
	}

	out, _ = exec(context.Background(), "web_search", map[string]any{"query": "x"})
	if !strings.Contains(out, "unknown tool") {
		t.Fatalf("expected unknown tool message, got %q", out)
	}
}

func TestWritePreview(t *testing.T) {
	index, err := BuildIndex(context.Background(), &keywordEmbedder{}, []Chunk{{Text: "transformer attention"}})
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	var b strings.Builder
	if err := WritePreview(context.Background(), &b, index, "attention", 2, 0); err != nil {
		t.Fatalf("WritePreview: %v", err)
	}
	if !strings.Contains(b.String(), "chunk 1 text: transformer attention") {
		t.Fatalf("unexpected preview: %s", b.String())
	}
	if err := WritePreview(context.Background(), &b, index, "  ", 2, 0); err == nil {
		t.Fatal("expected empty query error")
	}
}
