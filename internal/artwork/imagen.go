// Package artwork generates optional podcast cover art.
package artwork

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mwiater/paper2pod/internal/appconfig"
	"github.com/mwiater/paper2pod/internal/logging"
)

// ImageGenerator turns a text prompt into encoded image bytes.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

// ImagenClient calls the Google generative language models/<model>:predict endpoint.
type ImagenClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// NewImagenClient builds a client from cfg. The Google credential is copied here.
func NewImagenClient(cfg appconfig.Config) *ImagenClient {
	return &ImagenClient{
		client:  &http.Client{Timeout: cfg.RequestTimeout()},
		baseURL: strings.TrimRight(cfg.GoogleBaseURL, "/"),
		apiKey:  cfg.GoogleAPIKey,
		model:   cfg.ImageModel,
	}
}

type predictRequest struct {
	Instances  []predictInstance `json:"instances"`
	Parameters predictParameters `json:"parameters"`
}

type predictInstance struct {
	Prompt string `json:"prompt"`
}

type predictParameters struct {
	SampleCount int    `json:"sampleCount"`
	AspectRatio string `json:"aspectRatio,omitempty"`
}

type predictResponse struct {
	Predictions []struct {
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
		MimeType           string `json:"mimeType"`
	} `json:"predictions"`
}

// Generate requests one square image for prompt and returns its bytes.
func (c *ImagenClient) Generate(ctx context.Context, prompt string) ([]byte, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return nil, fmt.Errorf("google API key is not configured")
	}
	body, err := json.Marshal(predictRequest{
		Instances:  []predictInstance{{Prompt: prompt}},
		Parameters: predictParameters{SampleCount: 1, AspectRatio: "1:1"},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal imagen request: %w", err)
	}
	logging.LogRequest("P2P->IMAGEN", c.baseURL, c.model, "", prompt)

	url := fmt.Sprintf("%s/models/%s:predict", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create imagen request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("imagen request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read imagen response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("imagen error %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed predictResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse imagen response: %w", err)
	}
	for _, p := range parsed.Predictions {
		if p.BytesBase64Encoded == "" {
			continue
		}
		img, err := base64.StdEncoding.DecodeString(p.BytesBase64Encoded)
		if err != nil {
			return nil, fmt.Errorf("decode imagen image: %w", err)
		}
		return img, nil
	}
	return nil, fmt.Errorf("imagen response contained no images")
}
