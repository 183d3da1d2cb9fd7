package rag

// Chunk is an immutable window of the source document.
type Chunk struct {
	Text    string
	Offset  int // rune offset of the first character in the source
	Ordinal int
}

// ChunkText splits text into windows of size runes, each starting
// size-overlap runes after the previous one. Every rune of text lands in at
// least one chunk and adjacent chunks share exactly overlap runes.
func ChunkText(text string, size, overlap int) []Chunk {
	if size <= 0 {
		return nil
	}
	if overlap < 0 {
		overlap = 0
	}
	step := size - overlap
	if step <= 0 {
		step = size
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	var chunks []Chunk
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, Chunk{
			Text:    string(runes[start:end]),
			Offset:  start,
			Ordinal: len(chunks),
		})
		if end == len(runes) {
			break
		}
	}
	return chunks
}
