// Package audio stitches per-turn speech into one podcast track.
package audio

import (
	"bytes"
	"context"

	"github.com/mwiater/paper2pod/internal/logging"
	"github.com/mwiater/paper2pod/internal/transcript"
	"github.com/mwiater/paper2pod/internal/tts"
)

// Track is the concatenated audio for a transcript.
type Track struct {
	Audio       []byte
	Synthesized int
	Skipped     int
}

// Voices assigns a voice ID to each speaker. Default is used for untagged
// turns and falls back to Host when empty.
type Voices struct {
	Host    string
	Guest   string
	Default string
}

// Synthesizer renders transcript turns through a tts.Provider.
type Synthesizer struct {
	provider tts.Provider
	voices   Voices
	model    string
	format   string
}

// NewSynthesizer returns a Synthesizer that speaks with voices via provider.
func NewSynthesizer(provider tts.Provider, voices Voices, model string) *Synthesizer {
	if voices.Default == "" {
		voices.Default = voices.Host
	}
	return &Synthesizer{provider: provider, voices: voices, model: model, format: tts.DefaultFormat}
}

// VoiceFor returns the voice assigned to speaker.
func (s *Synthesizer) VoiceFor(speaker string) string {
	switch speaker {
	case transcript.SpeakerHost:
		return s.voices.Host
	case transcript.SpeakerGuest:
		return s.voices.Guest
	default:
		return s.voices.Default
	}
}

// Synthesize speaks each turn in order and concatenates the audio. A turn
// whose synthesis fails is logged and left out of the track. Only context
// cancellation aborts.
func (s *Synthesizer) Synthesize(ctx context.Context, turns []transcript.Turn) (Track, error) {
	var (
		buf   bytes.Buffer
		track Track
	)
	for i, turn := range turns {
		if err := ctx.Err(); err != nil {
			return Track{}, err
		}
		voice := s.VoiceFor(turn.Speaker)
		res, err := s.provider.Synthesize(ctx, turn.Text, tts.Options{Voice: voice, Model: s.model, Format: s.format})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Track{}, ctxErr
			}
			logging.LogWarn("skipping segment %d (%s, voice %s): %v", i+1, speakerLabel(turn.Speaker), voice, err)
			track.Skipped++
			continue
		}
		buf.Write(res.Audio)
		track.Synthesized++
	}
	track.Audio = buf.Bytes()
	logging.LogEvent("[AUDIO] synthesized %d of %d segment(s), %d byte(s)", track.Synthesized, len(turns), len(track.Audio))
	return track, nil
}

func speakerLabel(speaker string) string {
	if speaker == transcript.SpeakerNone {
		return "untagged"
	}
	return speaker
}
