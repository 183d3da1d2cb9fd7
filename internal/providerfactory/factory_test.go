// internal/providerfactory/factory_test.go
package providerfactory

import (
	"testing"

	"github.com/mwiater/paper2pod/internal/appconfig"
	"github.com/mwiater/paper2pod/internal/providers/openai"
)

func TestNormalizeHostTypeAliases(t *testing.T) {
	for _, alias := range []string{"", "openai", "llama.cpp", "llamacpp", "Ollama"} {
		got, err := normalizeHostType(alias)
		if err != nil {
			t.Fatalf("alias %q returned error: %v", alias, err)
		}
		if got != appconfig.HostTypeOpenAI {
			t.Fatalf("alias %q mapped to %q", alias, got)
		}
	}
	if _, err := normalizeHostType("unsupported"); err == nil {
		t.Fatal("expected error for unsupported host type")
	}
}

func TestNewChatProviderErrorsOnNilConfig(t *testing.T) {
	if _, err := NewChatProvider(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestNewChatProviderDefaultsToOpenAI(t *testing.T) {
	cfg := &appconfig.Config{OpenAIAPIKey: "sk-test"}
	cfg.ApplyDefaults()

	provider, err := NewChatProvider(cfg)
	if err != nil {
		t.Fatalf("NewChatProvider returned error: %v", err)
	}
	if _, ok := provider.(*openai.Provider); !ok {
		t.Fatalf("expected openai.Provider, got %T", provider)
	}
}
