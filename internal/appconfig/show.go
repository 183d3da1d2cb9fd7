package appconfig

import (
	"fmt"
	"io"
)

// ShowConfig prints the current configuration summary with credentials masked.
func ShowConfig(out io.Writer, file string, cfg *Config) {
	if file == "" {
		fmt.Fprintln(out, "No config file loaded (using defaults).")
	} else {
		fmt.Fprintf(out, "Config file: %s\n\n", file)
	}

	fmt.Fprintln(out, "Current configuration:")
	if cfg == nil {
		fmt.Fprintln(out, "  (configuration not loaded)")
		return
	}

	temperature := "default"
	if cfg.Parameters.Temperature != nil {
		temperature = fmt.Sprintf("%.2f", *cfg.Parameters.Temperature)
	}

	fmt.Fprintf(out, "  Debug:             %v\n", cfg.Debug)
	fmt.Fprintf(out, "  OpenAI Base URL:   %s\n", cfg.OpenAIBaseURL)
	fmt.Fprintf(out, "  OpenAI API Key:    %s\n", MaskSecret(cfg.OpenAIAPIKey))
	fmt.Fprintf(out, "  Google API Key:    %s\n", MaskSecret(cfg.GoogleAPIKey))
	fmt.Fprintf(out, "  Host Type:         %s\n", cfg.HostType)
	fmt.Fprintf(out, "  Chat Model:        %s (temperature %s)\n", cfg.ChatModel, temperature)
	fmt.Fprintf(out, "  Embedding Model:   %s\n", cfg.EmbeddingModel)
	fmt.Fprintf(out, "  TTS Model:         %s\n", cfg.TTSModel)
	fmt.Fprintf(out, "  Image Model:       %s\n", cfg.ImageModel)
	fmt.Fprintf(out, "  Chunk Size:        %d (overlap %d)\n", cfg.ChunkSize, cfg.Overlap())
	fmt.Fprintf(out, "  Top K:             %d\n", cfg.TopK)
	fmt.Fprintf(out, "  Max Tool Rounds:   %d\n", cfg.MaxToolRounds)
	fmt.Fprintf(out, "  Structured Script: %v\n", !cfg.PlainScript)
	fmt.Fprintf(out, "  Persona:           %s\n", cfg.Persona)
	fmt.Fprintf(out, "  Voices:            host=%s guest=%s\n", cfg.HostVoice, cfg.GuestVoice)
	fmt.Fprintf(out, "  Output Dir:        %s\n", cfg.OutputDir)
	fmt.Fprintf(out, "  Request Timeout:   %s\n", cfg.RequestTimeout())
}
