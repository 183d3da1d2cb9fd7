// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "config/config.json"
	// DefaultOpenAIBaseURL is the OpenAI-compatible API root used for chat, embeddings and speech.
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultGoogleBaseURL is the Google generative language API root used for cover art.
	DefaultGoogleBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	// DefaultOutputDir is where finished episodes are written.
	DefaultOutputDir = "generated podcasts"
	// HostTypeOpenAI identifies an OpenAI-compatible chat host.
	HostTypeOpenAI = "openai"

	defaultRequestTimeout  = 600 * time.Second
	defaultChatModel       = "gpt-4o"
	defaultTemperature     = 0.7
	defaultEmbeddingModel  = "text-embedding-3-small"
	defaultTTSModel        = "tts-1"
	defaultImageModel      = "imagen-3.0-generate-002"
	defaultChunkSize       = 2000
	defaultChunkOverlap    = 400
	defaultTopK            = 4
	defaultMaxToolRounds   = 5
	defaultCoverSize       = 1024
	defaultTTSRequestsRate = 2.0
	defaultPersona         = "standard"
	defaultHostVoice       = "alloy"
	defaultGuestVoice      = "echo"
)

// ErrMissingCredential is returned when the OpenAI credential is absent.
var ErrMissingCredential = errors.New("missing OpenAI API key (set OPENAI_API_KEY)")

// Config represents the top-level application configuration.
type Config struct {
	OpenAIBaseURL        string     `json:"openaiBaseURL" mapstructure:"openaiBaseURL"`
	OpenAIAPIKey         string     `json:"-" mapstructure:"openaiApiKey"`
	GoogleBaseURL        string     `json:"googleBaseURL" mapstructure:"googleBaseURL"`
	GoogleAPIKey         string     `json:"-" mapstructure:"googleApiKey"`
	HostType             string     `json:"hostType" mapstructure:"hostType"`
	ChatModel            string     `json:"chatModel" mapstructure:"chatModel"`
	Parameters           Parameters `json:"parameters" mapstructure:"parameters"`
	EmbeddingModel       string     `json:"embeddingModel" mapstructure:"embeddingModel"`
	TTSModel             string     `json:"ttsModel" mapstructure:"ttsModel"`
	ImageModel           string     `json:"imageModel" mapstructure:"imageModel"`
	ChunkSize            int        `json:"chunkSize" mapstructure:"chunkSize"`
	ChunkOverlap         *int       `json:"chunkOverlap,omitempty" mapstructure:"chunkOverlap"`
	TopK                 int        `json:"topK" mapstructure:"topK"`
	ContextTokenLimit    int        `json:"contextTokenLimit" mapstructure:"contextTokenLimit"`
	MaxToolRounds        int        `json:"maxToolRounds" mapstructure:"maxToolRounds"`
	PlainScript          bool       `json:"plainScript" mapstructure:"plainScript"`
	Persona              string     `json:"persona" mapstructure:"persona"`
	HostVoice            string     `json:"hostVoice" mapstructure:"hostVoice"`
	GuestVoice           string     `json:"guestVoice" mapstructure:"guestVoice"`
	OutputDir            string     `json:"outputDir" mapstructure:"outputDir"`
	CoverSize            int        `json:"coverSize" mapstructure:"coverSize"`
	TTSRequestsPerSecond float64    `json:"ttsRequestsPerSecond" mapstructure:"ttsRequestsPerSecond"`
	TimeoutSeconds       int        `json:"timeout,omitempty" mapstructure:"timeout"`
	LogFile              string     `json:"logFile,omitempty" mapstructure:"logFile"`
	Debug                bool       `json:"debug" mapstructure:"debug"`
	ConfigPath           string     `json:"-" mapstructure:"-"`
}

// Host represents the endpoint that serves chat completions.
type Host struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Type string `json:"type"`
}

// Parameters controls the chat model's sampling behavior.
type Parameters struct {
	Temperature *float64 `json:"temperature,omitempty" mapstructure:"temperature"`
	TopP        *float64 `json:"top_p,omitempty" mapstructure:"top_p"`
	MaxTokens   *int     `json:"max_tokens,omitempty" mapstructure:"max_tokens"`
}

// ApplyDefaults fills every unset field with its default value.
func (c *Config) ApplyDefaults() {
	if strings.TrimSpace(c.OpenAIBaseURL) == "" {
		c.OpenAIBaseURL = DefaultOpenAIBaseURL
	}
	if strings.TrimSpace(c.GoogleBaseURL) == "" {
		c.GoogleBaseURL = DefaultGoogleBaseURL
	}
	if strings.TrimSpace(c.HostType) == "" {
		c.HostType = HostTypeOpenAI
	}
	if strings.TrimSpace(c.ChatModel) == "" {
		c.ChatModel = defaultChatModel
	}
	if c.Parameters.Temperature == nil {
		t := defaultTemperature
		c.Parameters.Temperature = &t
	}
	if strings.TrimSpace(c.EmbeddingModel) == "" {
		c.EmbeddingModel = defaultEmbeddingModel
	}
	if strings.TrimSpace(c.TTSModel) == "" {
		c.TTSModel = defaultTTSModel
	}
	if strings.TrimSpace(c.ImageModel) == "" {
		c.ImageModel = defaultImageModel
	}
	if c.ChunkSize == 0 {
		c.ChunkSize = defaultChunkSize
	}
	if c.ChunkOverlap == nil {
		overlap := 0
		if c.ChunkSize == defaultChunkSize {
			overlap = defaultChunkOverlap
		}
		c.ChunkOverlap = &overlap
	}
	if c.TopK <= 0 {
		c.TopK = defaultTopK
	}
	if c.MaxToolRounds <= 0 {
		c.MaxToolRounds = defaultMaxToolRounds
	}
	if strings.TrimSpace(c.Persona) == "" {
		c.Persona = defaultPersona
	}
	if strings.TrimSpace(c.HostVoice) == "" {
		c.HostVoice = defaultHostVoice
	}
	if strings.TrimSpace(c.GuestVoice) == "" {
		c.GuestVoice = defaultGuestVoice
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		c.OutputDir = DefaultOutputDir
	}
	if c.CoverSize <= 0 {
		c.CoverSize = defaultCoverSize
	}
	if c.TTSRequestsPerSecond <= 0 {
		c.TTSRequestsPerSecond = defaultTTSRequestsRate
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = int(defaultRequestTimeout.Seconds())
	}
	c.Canonicalize()
}

// Canonicalize rewrites the persona and voices to their catalog spelling so
// "Nova" reaches the speech endpoint as "nova". Unknown values are left for
// Validate to report.
func (c *Config) Canonicalize() {
	if p, ok := LookupPersona(c.Persona); ok {
		c.Persona = p.Name
	}
	if v, ok := LookupVoice(c.HostVoice); ok {
		c.HostVoice = v.ID
	}
	if v, ok := LookupVoice(c.GuestVoice); ok {
		c.GuestVoice = v.ID
	}
}

// Validate reports configuration errors that must stop the pipeline before it starts.
func (c Config) Validate() error {
	if strings.TrimSpace(c.OpenAIAPIKey) == "" {
		return ErrMissingCredential
	}
	if err := c.ValidateChunking(); err != nil {
		return err
	}
	if _, ok := LookupPersona(c.Persona); !ok {
		return fmt.Errorf("unknown persona %q (choose one of %s)", c.Persona, strings.Join(PersonaNames(), ", "))
	}
	if _, ok := LookupVoice(c.HostVoice); !ok {
		return fmt.Errorf("unknown host voice %q (choose one of %s)", c.HostVoice, strings.Join(VoiceIDs(), ", "))
	}
	if _, ok := LookupVoice(c.GuestVoice); !ok {
		return fmt.Errorf("unknown guest voice %q (choose one of %s)", c.GuestVoice, strings.Join(VoiceIDs(), ", "))
	}
	return nil
}

// ValidateChunking checks the chunk window settings.
func (c Config) ValidateChunking() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunkSize must be greater than zero")
	}
	if c.Overlap() < 0 {
		return fmt.Errorf("chunkOverlap must be zero or greater")
	}
	if c.Overlap() >= c.ChunkSize {
		return fmt.Errorf("chunkOverlap must be smaller than chunkSize")
	}
	return nil
}

// Overlap returns the chunk overlap in runes. An unset overlap is zero.
func (c Config) Overlap() int {
	if c.ChunkOverlap == nil {
		return 0
	}
	return *c.ChunkOverlap
}

// ChatHost returns the host that serves chat completions.
func (c Config) ChatHost() Host {
	return Host{Name: c.HostType, URL: strings.TrimRight(c.OpenAIBaseURL, "/"), Type: c.HostType}
}

// RequestTimeout returns the timeout duration for HTTP requests, falling back to the default if not specified.
func (c Config) RequestTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultRequestTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CoverArtEnabled reports whether a Google credential is available for cover art.
func (c Config) CoverArtEnabled() bool {
	return strings.TrimSpace(c.GoogleAPIKey) != ""
}

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := c.LogFile; strings.TrimSpace(path) != "" {
		return path
	}
	return "paper2pod.log"
}
