// internal/providerfactory/factory.go
package providerfactory

import (
	"fmt"
	"strings"

	"github.com/mwiater/paper2pod/internal/appconfig"
	"github.com/mwiater/paper2pod/internal/logging"
	"github.com/mwiater/paper2pod/internal/providers"
	"github.com/mwiater/paper2pod/internal/providers/openai"
)

// NewChatProvider selects and configures the chat provider for the configured host type.
func NewChatProvider(cfg *appconfig.Config) (providers.ChatProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config provided to provider factory")
	}

	hostType, err := normalizeHostType(cfg.HostType)
	if err != nil {
		return nil, err
	}

	switch hostType {
	case appconfig.HostTypeOpenAI:
		logging.LogEvent("chat provider ready: %s (%s)", hostType, cfg.ChatHost().URL)
		return openai.New(*cfg), nil
	default:
		return nil, fmt.Errorf("unsupported host type %q", cfg.HostType)
	}
}

// normalizeHostType maps the OpenAI-compatible aliases onto a single provider.
func normalizeHostType(value string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "openai", "llamacpp", "llama.cpp", "ollama":
		return appconfig.HostTypeOpenAI, nil
	default:
		return "", fmt.Errorf("unsupported host type %q", value)
	}
}
