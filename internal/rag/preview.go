package rag

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mwiater/paper2pod/internal/util"
)

const previewTextRunes = 600

// WritePreview runs a retrieval for query and prints each scored chunk and the rendered context.
func WritePreview(ctx context.Context, out io.Writer, index *Index, query string, k, maxTokens int) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return fmt.Errorf("query is required")
	}
	if index == nil {
		return fmt.Errorf("index is nil")
	}

	result, err := index.Retrieve(ctx, query, k, maxTokens)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "[RAG] query: %s\n", query)
	fmt.Fprintf(out, "[RAG] indexed chunks: %d\n", index.Len())
	fmt.Fprintf(out, "[RAG] retrieval_ms: %d\n", result.RetrievalMs)
	fmt.Fprintf(out, "[RAG] context_tokens: %d\n", result.ContextTokens)
	for i, chunk := range result.Chunks {
		fmt.Fprintf(out, "[RAG] chunk %d score=%.6f ordinal=%d offset=%d\n", i+1, chunk.Score, chunk.Entry.Ordinal, chunk.Entry.Offset)
		fmt.Fprintf(out, "[RAG] chunk %d text: %s\n", i+1, util.TruncateRunes(chunk.Entry.Text, previewTextRunes))
	}
	if result.Context != "" {
		fmt.Fprintf(out, "[RAG] context:\n%s\n", result.Context)
	}
	return nil
}
