package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/mwiater/paper2pod/internal/appconfig"
	"github.com/mwiater/paper2pod/internal/logging"
)

// DefaultFormat is the single codec every segment is requested in, so
// buffers can be concatenated into one track.
const DefaultFormat = "mp3"

// OpenAIProvider implements TTS via the OpenAI audio/speech API.
type OpenAIProvider struct {
	client  *http.Client
	apiKey  string
	apiBase string
	model   string
	voice   string
	limiter *rate.Limiter
}

// NewOpenAIProvider creates an OpenAI TTS provider from cfg. The credential
// is copied here; the provider never reads the environment.
func NewOpenAIProvider(cfg appconfig.Config) *OpenAIProvider {
	limit := rate.Inf
	if cfg.TTSRequestsPerSecond > 0 {
		limit = rate.Limit(cfg.TTSRequestsPerSecond)
	}
	return &OpenAIProvider{
		client:  &http.Client{Timeout: cfg.RequestTimeout()},
		apiKey:  cfg.OpenAIAPIKey,
		apiBase: strings.TrimRight(cfg.OpenAIBaseURL, "/"),
		model:   cfg.TTSModel,
		voice:   cfg.HostVoice,
		limiter: rate.NewLimiter(limit, 1),
	}
}

func (p *OpenAIProvider) Name() string { return "openai" }

// Synthesize POSTs {model, input, voice, response_format} to {apiBase}/audio/speech.
func (p *OpenAIProvider) Synthesize(ctx context.Context, text string, opts Options) (*SynthResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty text")
	}
	voice := opts.Voice
	if voice == "" {
		voice = p.voice
	}
	model := opts.Model
	if model == "" {
		model = p.model
	}
	format := opts.Format
	if format == "" {
		format = DefaultFormat
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("tts rate limiter: %w", err)
	}

	bodyJSON, err := json.Marshal(map[string]any{
		"model":           model,
		"input":           text,
		"voice":           voice,
		"response_format": format,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal openai tts request: %w", err)
	}
	logging.LogRequest("P2P->TTS", p.apiBase, model, voice, text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiBase+"/audio/speech", bytes.NewReader(bodyJSON))
	if err != nil {
		return nil, fmt.Errorf("create openai tts request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai tts request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("openai tts error %d: %s", resp.StatusCode, strings.TrimSpace(string(errBody)))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read openai tts response: %w", err)
	}

	ext, mime := format, "audio/mpeg"
	switch format {
	case "opus":
		ext, mime = "ogg", "audio/ogg"
	case "wav":
		mime = "audio/wav"
	case "flac":
		mime = "audio/flac"
	}
	return &SynthResult{Audio: audio, Extension: ext, MimeType: mime}, nil
}
