package llm

import (
	"context"
	"fmt"
	"strings"
)

// Providers lists the supported backend names.
var Providers = []string{"ollama", "yandex", "openai", "anthropic", "gemini"}

// NewClient creates a raw backend for cfg.Provider.
func NewClient(ctx context.Context, cfg Config) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "ollama":
		return newOllamaClient(cfg)
	case "yandex":
		return newYandexClient(cfg)
	case "openai":
		return newOpenAIClient(cfg)
	case "anthropic":
		return newAnthropicClient(cfg)
	case "gemini":
		return newGeminiClient(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
