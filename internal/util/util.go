// internal/util/util.go
package util

import (
	"strings"
	"unicode/utf8"
)

// TruncateRunes truncates a string to a maximum number of runes,
// appending an ellipsis if truncated.
func TruncateRunes(text string, maxRunes int) string {
	if maxRunes <= 0 || utf8.RuneCountInString(text) <= maxRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxRunes]) + "…"
}

// WrapToWidth wraps text on word boundaries so no line exceeds width runes.
// Words longer than width are split. Existing line breaks are kept.
func WrapToWidth(text string, width int) string {
	if width <= 0 {
		return text
	}
	var out []string
	for _, line := range strings.Split(text, "\n") {
		words := strings.Fields(line)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		var cur strings.Builder
		curLen := 0
		flush := func() {
			if curLen > 0 {
				out = append(out, cur.String())
				cur.Reset()
				curLen = 0
			}
		}
		for _, w := range words {
			r := []rune(w)
			for len(r) > width {
				flush()
				out = append(out, string(r[:width]))
				r = r[width:]
			}
			if len(r) == 0 {
				continue
			}
			if curLen > 0 && curLen+1+len(r) > width {
				flush()
			}
			if curLen > 0 {
				cur.WriteByte(' ')
				curLen++
			}
			cur.WriteString(string(r))
			curLen += len(r)
		}
		flush()
	}
	return strings.Join(out, "\n")
}

// Indent prefixes every line after the first with pad.
func Indent(text, pad string) string {
	return strings.ReplaceAll(text, "\n", "\n"+pad)
}
