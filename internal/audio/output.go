package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	maxTitleRunes = 50
	fallbackTitle = "podcast"
)

// ErrEmptyTrack is returned by WriteTrack when no segment produced audio.
var ErrEmptyTrack = errors.New("no audio segments were synthesized")

// SanitizeTitle strips characters that are illegal in file names and
// truncates the result to 50 characters.
func SanitizeTitle(title string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '\\', '/', '*', '?', ':', '"', '<', '>', '|':
			return -1
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, title)

	runes := []rune(strings.TrimSpace(cleaned))
	if len(runes) > maxTitleRunes {
		runes = runes[:maxTitleRunes]
	}
	safe := strings.TrimSpace(string(runes))
	if safe == "" {
		return fallbackTitle
	}
	return safe
}

// OutputPath returns the deterministic track path for title under dir.
func OutputPath(dir, title string) string {
	return filepath.Join(dir, SanitizeTitle(title)+".mp3")
}

// WriteTrack writes the track to path, creating the parent directory.
func WriteTrack(path string, track Track) error {
	if len(track.Audio) == 0 {
		return ErrEmptyTrack
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, track.Audio, 0o644); err != nil {
		return fmt.Errorf("write audio: %w", err)
	}
	return nil
}
