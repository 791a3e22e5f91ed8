package llm

import (
	"context"
	"fmt"

	"taleweaver/internal/config"
)

// NewBackend builds the backend named by cfg.Provider. Hosted providers
// need an API key.
func NewBackend(ctx context.Context, cfg config.LLMConfig) (Backend, error) {
	switch cfg.Provider {
	case "gemini":
		if err := cfg.RequireAPIKey(); err != nil {
			return nil, err
		}
		return NewGeminiBackend(ctx, cfg.APIKey, cfg.Model)
	case "openai":
		if err := cfg.RequireAPIKey(); err != nil {
			return nil, err
		}
		return NewOpenAIBackend(cfg.APIKey, cfg.BaseURL, cfg.Model), nil
	case "ollama":
		return NewOllamaBackend(cfg.BaseURL, cfg.Model, cfg.Timeout)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}
