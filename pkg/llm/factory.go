package llm

import (
	"context"
	"fmt"
	"strings"
)

// Provider names accepted by New.
const (
	ProviderOpenAI   = "openai"
	ProviderGemini   = "gemini"
	ProviderMock     = "mock"
	ProviderFallback = "fallback"
)

// Config selects and configures the provider.
type Config struct {
	Provider     string
	APIKey       string
	GeminiAPIKey string
	Model        string
	BaseURL      string
}

// New picks the provider once at startup. An explicit "mock" yields a mock
// named "mock"; a provider without credentials yields a mock named "fallback".
// An empty provider means openai when an API key is set, gemini when only a
// Gemini key is set.
func New(ctx context.Context, cfg Config) (Provider, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if name == "" {
		switch {
		case cfg.APIKey != "":
			name = ProviderOpenAI
		case cfg.GeminiAPIKey != "":
			name = ProviderGemini
		default:
			return NewMock(ProviderFallback), nil
		}
	}

	switch name {
	case ProviderMock:
		return NewMock(ProviderMock), nil
	case ProviderOpenAI:
		if cfg.APIKey == "" {
			return NewMock(ProviderFallback), nil
		}
		return NewOpenAI(cfg.APIKey, cfg.Model, cfg.BaseURL)
	case ProviderGemini:
		key := cfg.GeminiAPIKey
		if key == "" {
			key = cfg.APIKey
		}
		if key == "" {
			return NewMock(ProviderFallback), nil
		}
		return NewGemini(ctx, key, cfg.Model)
	default:
		return nil, fmt.Errorf("unsupported ai provider %q", cfg.Provider)
	}
}
