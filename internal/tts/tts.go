// Package tts is the text-to-speech boundary: (text, voice) in, audio bytes out.
package tts

import "context"

// Provider synthesizes text into audio bytes.
type Provider interface {
	Name() string
	Synthesize(ctx context.Context, text string, opts Options) (*SynthResult, error)
}

// Options controls synthesis parameters.
type Options struct {
	Voice  string // provider-specific voice ID
	Model  string // provider-specific model ID
	Format string // output format, "mp3" when empty
}

// SynthResult is the output of one synthesis call.
type SynthResult struct {
	Audio     []byte
	Extension string // without dot
	MimeType  string
}
