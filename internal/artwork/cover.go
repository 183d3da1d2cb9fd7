package artwork

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/mwiater/paper2pod/internal/appconfig"
	"github.com/mwiater/paper2pod/internal/logging"
	"github.com/mwiater/paper2pod/internal/providers"
)

// Artist writes a cover image for an episode title.
type Artist struct {
	Chat       providers.ChatProvider
	Host       appconfig.Host
	Model      string
	Parameters appconfig.Parameters
	Images     ImageGenerator
	Size       int
}

// Prompt asks the chat model for a short image prompt describing title.
func (a *Artist) Prompt(ctx context.Context, title string) (string, error) {
	resp, err := a.Chat.Chat(ctx, providers.ChatRequest{
		Host:       a.Host,
		Model:      a.Model,
		Parameters: a.Parameters,
		History: []providers.ChatMessage{{
			Role: providers.RoleUser,
			Content: fmt.Sprintf("Generate a short, artistic, and descriptive image prompt for a podcast cover art "+
				"based on this paper title: '%s'. The style should be modern, digital art, and relevant to the topic. "+
				"Output ONLY the prompt.", title),
		}},
	})
	if err != nil {
		return "", fmt.Errorf("image prompt: %w", err)
	}
	prompt := strings.Trim(strings.TrimSpace(resp.Message.Content), `"`)
	if prompt == "" {
		return "", fmt.Errorf("image prompt: empty response")
	}
	return prompt, nil
}

// Create generates, fits and saves the cover for title at path.
func (a *Artist) Create(ctx context.Context, title, path string) (string, error) {
	prompt, err := a.Prompt(ctx, title)
	if err != nil {
		return "", err
	}
	raw, err := a.Images.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	cover, err := Fit(raw, a.Size)
	if err != nil {
		return "", err
	}
	if err := Save(path, cover); err != nil {
		return "", err
	}
	logging.LogEvent("[ART] cover saved to %s (%dpx) prompt=%q", path, a.Size, prompt)
	return prompt, nil
}

// Fit decodes image bytes and crops them to a size x size square.
func Fit(raw []byte, size int) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode cover: %w", err)
	}
	if size <= 0 {
		return img, nil
	}
	return imaging.Fill(img, size, size, imaging.Center, imaging.Lanczos), nil
}

// Save writes img to path. The format follows the extension.
func Save(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create cover dir: %w", err)
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("save cover: %w", err)
	}
	return nil
}
