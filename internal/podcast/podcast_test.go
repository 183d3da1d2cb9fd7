package podcast

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/mwiater/paper2pod/internal/appconfig"
	"github.com/mwiater/paper2pod/internal/metrics"
	"github.com/mwiater/paper2pod/internal/providers"
	"github.com/mwiater/paper2pod/internal/tts"
)

func writePDF(t *testing.T, title, text string) string {
	t.Helper()
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 5 0 R >> >> /Contents 4 0 R >>",
	}
	stream := fmt.Sprintf("BT /F1 12 Tf 72 712 Td (%s) Tj ET", text)
	objects = append(objects,
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
		fmt.Sprintf("<< /Title (%s) >>", title),
	)
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R /Info %d 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, len(objects), xref)

	path := filepath.Join(t.TempDir(), "paper.pdf")
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// stubChat answers by request shape: tool-enabled requests are research,
// JSON-mode requests are the script, anything else is the cover prompt.
type stubChat struct {
	mu    sync.Mutex
	calls int
}

func (s *stubChat) Chat(_ context.Context, req providers.ChatRequest) (providers.ChatResponse, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	content := "A neon brain made of graphs"
	switch {
	case len(req.Tools) > 0:
		content = "Graphs are useful.\nLead Author: Jane Doe"
	case req.JSONMode:
		content = `{"dialogue":[{"speaker":"Host","text":"Hi I'm Sam."},{"speaker":"Guest","text":"Thanks Sam."}]}`
	}
	return providers.ChatResponse{Message: providers.ChatMessage{Role: providers.RoleAssistant, Content: content}}, nil
}

func (s *stubChat) Close() error { return nil }

type stubEmbedder struct{ err error }

func (e stubEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = []float64{1, float64(len(texts[i]))}
	}
	return out, nil
}

type stubSpeech struct{}

func (stubSpeech) Name() string { return "stub" }

func (stubSpeech) Synthesize(_ context.Context, text string, opts tts.Options) (*tts.SynthResult, error) {
	return &tts.SynthResult{Audio: []byte("[" + opts.Voice + "|" + text + "]")}, nil
}

type stubImages struct{ err error }

func (s stubImages) Generate(context.Context, string) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4)))
	return buf.Bytes(), nil
}

func testConfig(t *testing.T) appconfig.Config {
	cfg := appconfig.Config{OpenAIAPIKey: "sk-test", OutputDir: filepath.Join(t.TempDir(), "generated podcasts"), CoverSize: 4}
	cfg.ApplyDefaults()
	return cfg
}

func TestGenerateEndToEnd(t *testing.T) {
	agg := metrics.NewAggregator()
	chat := metrics.NewProvider(&stubChat{}, agg)
	var stages []string
	ep, err := Generate(context.Background(), Request{
		PDFPath:  writePDF(t, "Graph Theory: A Primer", "Graphs connect nodes"),
		Config:   testConfig(t),
		Services: Services{Chat: chat, Embedder: stubEmbedder{}, Speech: stubSpeech{}, Images: stubImages{}, Metrics: agg},
		Rand:     rand.New(rand.NewSource(7)),
		OnStage:  func(s string) { stages = append(stages, s) },
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if ep.Title != "Graph Theory: A Primer" || ep.Research.LeadAuthor != "Jane Doe" {
		t.Fatalf("unexpected episode %+v", ep)
	}
	if filepath.Base(ep.AudioPath) != "Graph Theory A Primer.mp3" {
		t.Fatalf("unexpected audio path %q", ep.AudioPath)
	}
	data, err := os.ReadFile(ep.AudioPath)
	if err != nil {
		t.Fatalf("read audio: %v", err)
	}
	if string(data) != "[alloy|Hi I'm Sam.][echo|Thanks Sam.]" {
		t.Fatalf("unexpected audio %q", data)
	}
	if ep.CoverPath == "" {
		t.Fatal("expected cover art")
	}
	if _, err := os.Stat(ep.CoverPath); err != nil {
		t.Fatalf("cover not written: %v", err)
	}
	script, _ := os.ReadFile(ep.ScriptPath)
	if !strings.HasPrefix(string(script), "Host: Hi I'm Sam.") {
		t.Fatalf("unexpected script file %q", script)
	}
	if ep.MetricsPath == "" || len(ep.Usage) != 1 || ep.Usage[0].OverallStats.TotalRequests != 3 {
		t.Fatalf("expected usage for research, script and cover prompt, got %+v", ep.Usage)
	}
	if _, err := os.Stat(ep.MetricsPath); err != nil {
		t.Fatalf("metrics report not written: %v", err)
	}
	joined := strings.Join(stages, ",")
	if !strings.Contains(joined, "RESEARCH,SCRIPT,DONE") || !strings.HasSuffix(joined, "AUDIO") {
		t.Fatalf("unexpected stage order %s", joined)
	}
}

func TestGenerateMissingCredential(t *testing.T) {
	cfg := testConfig(t)
	cfg.OpenAIAPIKey = ""
	chat := &stubChat{}
	_, err := Generate(context.Background(), Request{
		PDFPath:  "does-not-matter.pdf",
		Config:   cfg,
		Services: Services{Chat: chat, Embedder: stubEmbedder{}, Speech: stubSpeech{}},
	})
	if !errors.Is(err, appconfig.ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
	if chat.calls != 0 {
		t.Fatalf("expected no chat calls, got %d", chat.calls)
	}
}

func TestGenerateEmbeddingFailureIsFatal(t *testing.T) {
	chat := &stubChat{}
	_, err := Generate(context.Background(), Request{
		PDFPath:  writePDF(t, "T", "Some text"),
		Config:   testConfig(t),
		Services: Services{Chat: chat, Embedder: stubEmbedder{err: errors.New("embeddings 503")}, Speech: stubSpeech{}},
	})
	if err == nil || !strings.HasPrefix(err.Error(), "index:") {
		t.Fatalf("expected index failure, got %v", err)
	}
	if chat.calls != 0 {
		t.Fatalf("expected pipeline to stop before agents, got %d chat calls", chat.calls)
	}
}

func TestGenerateCoverFailureDegrades(t *testing.T) {
	ep, err := Generate(context.Background(), Request{
		PDFPath:  writePDF(t, "Degraded", "Some text"),
		Config:   testConfig(t),
		Services: Services{Chat: &stubChat{}, Embedder: stubEmbedder{}, Speech: stubSpeech{}, Images: stubImages{err: errors.New("imagen 403")}},
	})
	if err != nil {
		t.Fatalf("expected cover failure to be non-fatal, got %v", err)
	}
	if ep.CoverPath != "" || ep.Synthesized != 2 {
		t.Fatalf("unexpected episode %+v", ep)
	}
}

// catalogSpeech rejects voices that are not spelled the way the speech API expects.
type catalogSpeech struct{ stubSpeech }

func (s catalogSpeech) Synthesize(ctx context.Context, text string, opts tts.Options) (*tts.SynthResult, error) {
	if opts.Voice != strings.ToLower(opts.Voice) {
		return nil, fmt.Errorf("unknown voice %q", opts.Voice)
	}
	return s.stubSpeech.Synthesize(ctx, text, opts)
}

func TestGenerateCanonicalizesVoiceCase(t *testing.T) {
	cfg := testConfig(t)
	cfg.HostVoice, cfg.GuestVoice = "Nova", "Onyx"
	ep, err := Generate(context.Background(), Request{
		PDFPath:  writePDF(t, "Voices", "Some text"),
		Config:   cfg,
		Services: Services{Chat: &stubChat{}, Embedder: stubEmbedder{}, Speech: catalogSpeech{}},
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if ep.Skipped != 0 {
		t.Fatalf("expected every segment to be synthesized, %d skipped", ep.Skipped)
	}
	data, err := os.ReadFile(ep.AudioPath)
	if err != nil {
		t.Fatalf("read audio: %v", err)
	}
	if string(data) != "[nova|Hi I'm Sam.][onyx|Thanks Sam.]" {
		t.Fatalf("unexpected audio %q", data)
	}
}

func TestGenerateStagedInputTitle(t *testing.T) {
	staged := writePDF(t, "", "Some text")

	ep, err := Generate(context.Background(), Request{
		PDFPath:    staged,
		SourceName: "podcast.pdf",
		Config:     testConfig(t),
		Services:   Services{Chat: &stubChat{}, Embedder: stubEmbedder{}, Speech: stubSpeech{}},
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if ep.Title != "podcast" || filepath.Base(ep.AudioPath) != "podcast.mp3" {
		t.Fatalf("expected source name title, got %q at %q", ep.Title, ep.AudioPath)
	}

	ep, err = Generate(context.Background(), Request{
		PDFPath:    staged,
		SourceName: "podcast.pdf",
		Title:      "Sparse Attention",
		Config:     testConfig(t),
		Services:   Services{Chat: &stubChat{}, Embedder: stubEmbedder{}, Speech: stubSpeech{}},
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if ep.Title != "Sparse Attention" || filepath.Base(ep.AudioPath) != "Sparse Attention.mp3" {
		t.Fatalf("expected title override, got %q at %q", ep.Title, ep.AudioPath)
	}
}
