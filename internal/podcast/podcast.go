// Package podcast runs the whole paper-to-podcast pipeline for one PDF.
package podcast

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/mwiater/paper2pod/internal/agents"
	"github.com/mwiater/paper2pod/internal/appconfig"
	"github.com/mwiater/paper2pod/internal/artwork"
	"github.com/mwiater/paper2pod/internal/audio"
	"github.com/mwiater/paper2pod/internal/document"
	"github.com/mwiater/paper2pod/internal/logging"
	"github.com/mwiater/paper2pod/internal/metrics"
	"github.com/mwiater/paper2pod/internal/providerfactory"
	"github.com/mwiater/paper2pod/internal/providers"
	"github.com/mwiater/paper2pod/internal/rag"
	"github.com/mwiater/paper2pod/internal/transcript"
	"github.com/mwiater/paper2pod/internal/tts"
)

// Services are the external clients the pipeline talks to. Images may be
// nil, in which case no cover art is produced. When Metrics is set a usage
// report is written next to the episode.
type Services struct {
	Chat     providers.ChatProvider
	Embedder rag.Embedder
	Speech   tts.Provider
	Images   artwork.ImageGenerator
	Metrics  *metrics.Aggregator
}

// NewServices builds the production clients from cfg. Credentials are
// passed by value into each client.
func NewServices(cfg appconfig.Config) (Services, error) {
	chat, err := providerfactory.NewChatProvider(&cfg)
	if err != nil {
		return Services{}, err
	}
	agg := metrics.NewAggregator()
	svc := Services{
		Chat:     metrics.NewProvider(chat, agg),
		Metrics:  agg,
		Embedder: rag.NewEmbeddingClient(cfg),
		Speech:   tts.NewOpenAIProvider(cfg),
	}
	if cfg.CoverArtEnabled() {
		svc.Images = artwork.NewImagenClient(cfg)
	}
	return svc, nil
}

// Close releases the chat provider.
func (s Services) Close() error {
	if s.Chat == nil {
		return nil
	}
	return s.Chat.Close()
}

// Request is one pipeline invocation.
type Request struct {
	PDFPath string
	// SourceName replaces PDFPath in the file-name title fallback, for
	// input staged under a temporary name.
	SourceName string
	// Title overrides the document title when set.
	Title    string
	Config   appconfig.Config
	Services Services
	// Rand picks the host display name; a time-seeded source is used when nil.
	Rand *rand.Rand
	// OnStage receives every pipeline and agent stage name.
	OnStage func(string)
}

// Episode is everything produced for one paper.
type Episode struct {
	Title       string
	HostName    string
	Research    agents.Research
	Transcript  transcript.Transcript
	Structured  bool
	ScriptPath  string
	AudioPath   string
	CoverPath   string
	CoverPrompt string
	MetricsPath string
	Usage       []metrics.ModelMetrics
	Synthesized int
	Skipped     int
}

// Generate converts the PDF at req.PDFPath into a script, an audio track and
// optionally a cover image. Configuration problems are reported before any
// network call. Embedding and chat failures abort; speech and image failures
// only degrade the result.
func Generate(ctx context.Context, req Request) (Episode, error) {
	cfg := req.Config
	cfg.Canonicalize()
	if err := cfg.Validate(); err != nil {
		return Episode{}, fmt.Errorf("configuration: %w", err)
	}
	svc := req.Services
	if svc.Chat == nil || svc.Embedder == nil || svc.Speech == nil {
		return Episode{}, fmt.Errorf("configuration: chat, embedding and speech services are required")
	}
	report := func(stage string) {
		if req.OnStage != nil {
			req.OnStage(stage)
		}
	}

	persona, _ := appconfig.LookupPersona(cfg.Persona)
	hostVoice, _ := appconfig.LookupVoice(cfg.HostVoice)
	rng := req.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	hostName := appconfig.HostName(hostVoice, rng)

	report("LOAD")
	sourceName := req.SourceName
	if sourceName == "" {
		sourceName = req.PDFPath
	}
	doc, err := document.LoadAs(req.PDFPath, sourceName)
	if err != nil {
		return Episode{}, fmt.Errorf("load PDF: %w", err)
	}
	if title := strings.TrimSpace(req.Title); title != "" {
		doc.Title = title
	}
	logging.LogEvent("[PIPELINE] loaded %q (%d page(s), %d chars)", doc.Title, doc.Pages, len(doc.Text))

	report("INDEX")
	chunks := rag.ChunkText(doc.Text, cfg.ChunkSize, cfg.Overlap())
	index, err := rag.BuildIndex(ctx, svc.Embedder, chunks)
	if err != nil {
		return Episode{}, fmt.Errorf("index: %w", err)
	}
	searchDef, searchExec := rag.SearchTool(index, cfg.TopK)

	orch := agents.NewOrchestrator(agents.Options{
		Runner: &agents.Runner{
			Provider:      svc.Chat,
			Host:          cfg.ChatHost(),
			Model:         cfg.ChatModel,
			Parameters:    cfg.Parameters,
			Executor:      searchExec,
			MaxToolRounds: cfg.MaxToolRounds,
		},
		SearchTool: searchDef,
		Persona:    persona,
		HostName:   hostName,
		Structured: !cfg.PlainScript,
		OnStage:    func(s agents.Stage) { report(string(s)) },
	})
	result, err := orch.Run(ctx)
	if err != nil {
		return Episode{}, fmt.Errorf("agents: %w", err)
	}

	ep := Episode{
		Title:      doc.Title,
		HostName:   hostName,
		Research:   result.Research,
		Transcript: result.Transcript,
		Structured: result.Structured,
		AudioPath:  audio.OutputPath(cfg.OutputDir, doc.Title),
	}
	base := strings.TrimSuffix(ep.AudioPath, ".mp3")

	ep.ScriptPath = base + ".txt"
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return Episode{}, fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(ep.ScriptPath, []byte(result.Transcript.Raw+"\n"), 0o644); err != nil {
		return Episode{}, fmt.Errorf("write script: %w", err)
	}

	if svc.Images != nil {
		report("ARTWORK")
		artist := &artwork.Artist{
			Chat:       svc.Chat,
			Host:       cfg.ChatHost(),
			Model:      cfg.ChatModel,
			Parameters: cfg.Parameters,
			Images:     svc.Images,
			Size:       cfg.CoverSize,
		}
		coverPath := base + ".png"
		prompt, err := artist.Create(ctx, doc.Title, coverPath)
		if err != nil {
			if ctx.Err() != nil {
				return Episode{}, ctx.Err()
			}
			logging.LogWarn("cover art skipped: %v", err)
		} else {
			ep.CoverPath = coverPath
			ep.CoverPrompt = prompt
		}
	}

	report("AUDIO")
	synth := audio.NewSynthesizer(svc.Speech, audio.Voices{Host: cfg.HostVoice, Guest: cfg.GuestVoice}, cfg.TTSModel)
	track, err := synth.Synthesize(ctx, result.Transcript.Turns)
	if err != nil {
		return Episode{}, fmt.Errorf("audio: %w", err)
	}
	ep.Synthesized, ep.Skipped = track.Synthesized, track.Skipped
	if err := audio.WriteTrack(ep.AudioPath, track); err != nil {
		return Episode{}, fmt.Errorf("audio: %w", err)
	}

	if svc.Metrics != nil {
		ep.Usage = svc.Metrics.Snapshot()
		if err := svc.Metrics.WriteReport(base + ".metrics.json"); err != nil {
			logging.LogWarn("metrics report skipped: %v", err)
		} else {
			ep.MetricsPath = base + ".metrics.json"
		}
	}

	logging.LogEvent("[PIPELINE] episode %q written to %s", ep.Title, ep.AudioPath)
	return ep, nil
}
