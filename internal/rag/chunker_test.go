package rag

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func reassemble(chunks []Chunk, overlap int) string {
	var b strings.Builder
	for i, c := range chunks {
		if i == 0 {
			b.WriteString(c.Text)
			continue
		}
		r := []rune(c.Text)
		b.WriteString(string(r[overlap:]))
	}
	return b.String()
}

func TestChunkTextCoversEveryCharacter(t *testing.T) {
	text := strings.Repeat("Attention is all you need. Ünïcödé matters too!\n", 40)
	for _, tc := range []struct{ size, overlap int }{{100, 20}, {64, 0}, {50, 49}, {2000, 400}} {
		chunks := ChunkText(text, tc.size, tc.overlap)
		if len(chunks) == 0 {
			t.Fatalf("size=%d overlap=%d: expected chunks", tc.size, tc.overlap)
		}
		if got := reassemble(chunks, tc.overlap); got != text {
			t.Fatalf("size=%d overlap=%d: reassembled text differs from source", tc.size, tc.overlap)
		}
		for i, c := range chunks {
			if c.Ordinal != i {
				t.Fatalf("chunk %d has ordinal %d", i, c.Ordinal)
			}
			if n := utf8.RuneCountInString(c.Text); n > tc.size {
				t.Fatalf("chunk %d has %d runes, max %d", i, n, tc.size)
			}
		}
	}
}

func TestChunkTextAdjacentOverlapIsExact(t *testing.T) {
	text := strings.Repeat("abcdefghij", 25)
	const size, overlap = 40, 15
	chunks := ChunkText(text, size, overlap)
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1].Text)
		cur := []rune(chunks[i].Text)
		if chunks[i].Offset-chunks[i-1].Offset != size-overlap {
			t.Fatalf("chunk %d starts %d runes after previous", i, chunks[i].Offset-chunks[i-1].Offset)
		}
		if string(prev[len(prev)-overlap:]) != string(cur[:overlap]) {
			t.Fatalf("chunk %d does not share %d runes with chunk %d", i, overlap, i-1)
		}
	}
}

func TestChunkTextEdgeCases(t *testing.T) {
	if ChunkText("", 10, 2) != nil {
		t.Fatal("expected nil for empty text")
	}
	if ChunkText("abc", 0, 0) != nil {
		t.Fatal("expected nil for zero size")
	}
	chunks := ChunkText("short", 100, 10)
	if len(chunks) != 1 || chunks[0].Text != "short" || chunks[0].Offset != 0 {
		t.Fatalf("unexpected single chunk: %+v", chunks)
	}
}
