// Package document loads academic PDFs into plain text plus a display title.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/mwiater/paper2pod/internal/logging"
)

// ErrNoText is returned when a PDF yields no extractable text.
var ErrNoText = errors.New("no extractable text in PDF")

// Document is the extracted content of one PDF.
type Document struct {
	Path  string
	Title string
	Text  string
	Pages int
}

// Load reads the PDF at path. The title comes from the PDF metadata when
// present, otherwise from the file name.
func Load(path string) (Document, error) {
	return LoadAs(path, path)
}

// LoadAs reads the PDF at path but falls back to name, not path, for the title.
func LoadAs(path, name string) (Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read file: %w", err)
	}
	doc, err := Parse(content, name)
	if err != nil {
		return Document{}, err
	}
	doc.Path = path
	return doc, nil
}

// Parse extracts text and title from PDF bytes. name is used for the title fallback.
func Parse(content []byte, name string) (Document, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return Document{}, fmt.Errorf("open PDF: %w", err)
	}

	text, pages, err := extractText(r)
	if err != nil {
		return Document{}, err
	}
	if strings.TrimSpace(text) == "" {
		return Document{}, ErrNoText
	}

	title := metadataTitle(r)
	if title == "" {
		title = TitleFromFilename(name)
		logging.LogEvent("[DOC] no metadata title; using file name %q", title)
	}

	return Document{Path: name, Title: title, Text: text, Pages: pages}, nil
}

func extractText(r *pdf.Reader) (string, int, error) {
	var buf bytes.Buffer
	numPages := r.NumPage()
	for i := 0; i < numPages; i++ {
		page := r.Page(i + 1)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", 0, fmt.Errorf("extract page %d: %w", i+1, err)
		}
		buf.WriteString(text)
		if i < numPages-1 {
			buf.WriteByte('\n')
		}
	}
	return buf.String(), numPages, nil
}

// metadataTitle reads /Title from the trailer's Info dictionary. Malformed
// metadata yields "" so callers fall back to the file name.
func metadataTitle(r *pdf.Reader) (title string) {
	defer func() {
		if recover() != nil {
			title = ""
		}
	}()
	info := r.Trailer().Key("Info")
	if info.IsNull() {
		return ""
	}
	return strings.TrimSpace(info.Key("Title").Text())
}

// TitleFromFilename strips the directory and a trailing .pdf extension.
func TitleFromFilename(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	if strings.EqualFold(filepath.Ext(base), ".pdf") {
		base = base[:len(base)-len(filepath.Ext(base))]
	}
	return base
}

// Stage copies a PDF stream into a temporary file. The returned cleanup
// removes the file and is safe to call more than once.
func Stage(r io.Reader) (string, func(), error) {
	tmp, err := os.CreateTemp("", "paper2pod-*.pdf")
	if err != nil {
		return "", func() {}, fmt.Errorf("create temp file: %w", err)
	}
	path := tmp.Name()
	cleanup := func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			logging.LogWarn("remove temp file %s: %v", path, err)
		}
	}

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", func() {}, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", func() {}, fmt.Errorf("close temp file: %w", err)
	}
	return path, cleanup, nil
}
