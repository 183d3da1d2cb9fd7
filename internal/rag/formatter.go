package rag

import (
	"fmt"
	"strings"
)

// FormatContext builds the CONTEXT block and returns the context text and its token count.
// maxTokens <= 0 disables the cap.
func FormatContext(chunks []RetrievedChunk, maxTokens int) (string, int) {
	if len(chunks) == 0 {
		return "", 0
	}
	if maxTokens < 0 {
		maxTokens = 0
	}

	var b strings.Builder
	b.WriteString("CONTEXT\n")

	contextTokens := 0
	remaining := maxTokens

	for _, chunk := range chunks {
		text := strings.TrimSpace(chunk.Entry.Text)
		if text == "" {
			continue
		}

		if maxTokens > 0 {
			if remaining <= 0 {
				break
			}
			if tokens := estimateTokens(text); tokens > remaining {
				text = truncateToTokens(text, remaining)
			}
		}

		usedTokens := estimateTokens(text)
		if usedTokens == 0 {
			continue
		}

		b.WriteString(fmt.Sprintf("[chunk:%d offset:%d] %s\n", chunk.Entry.Ordinal, chunk.Entry.Offset, text))
		contextTokens += usedTokens
		if maxTokens > 0 {
			remaining -= usedTokens
		}
	}

	return strings.TrimRight(b.String(), "\n"), contextTokens
}

func estimateTokens(text string) int {
	return len(strings.Fields(text))
}

func truncateToTokens(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	parts := strings.Fields(text)
	if len(parts) <= maxTokens {
		return text
	}
	return strings.Join(parts[:maxTokens], " ")
}
