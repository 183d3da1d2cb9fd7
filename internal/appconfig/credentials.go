package appconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// EnvOpenAIAPIKey holds the OpenAI credential.
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	// EnvGoogleAPIKey holds the optional Google credential used for cover art.
	EnvGoogleAPIKey = "GOOGLE_API_KEY"
)

// LoadDotEnv loads variables from envFile into the process environment without
// overriding values that are already set. A missing file is not an error.
func LoadDotEnv(envFile string) error {
	if strings.TrimSpace(envFile) == "" {
		return nil
	}
	if err := godotenv.Load(envFile); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", envFile, err)
	}
	return nil
}

// ApplyCredentials copies credentials from the environment into cfg when the
// config did not already carry them. Clients receive them by value from cfg.
func ApplyCredentials(cfg *Config) {
	if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
		cfg.OpenAIAPIKey = strings.TrimSpace(os.Getenv(EnvOpenAIAPIKey))
	}
	if strings.TrimSpace(cfg.GoogleAPIKey) == "" {
		cfg.GoogleAPIKey = strings.TrimSpace(os.Getenv(EnvGoogleAPIKey))
	}
}

// MaskSecret hides all but the last four characters of a credential.
func MaskSecret(secret string) string {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return "(not set)"
	}
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}
