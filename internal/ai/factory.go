package ai

import (
	"context"
	"fmt"
	"time"
)

const (
	ProviderOpenAI          = "openai"
	ProviderOpenAIAssistant = "openai-assistant"
	ProviderGemini          = "gemini"
)

// GeneratorConfig is the subset of AI settings needed to build a generator.
type GeneratorConfig struct {
	Provider     string
	APIKey       string
	BaseURL      string
	Model        string
	Temperature  float32
	AssistantID  string
	PollInterval time.Duration
}

func NewGenerator(ctx context.Context, cfg GeneratorConfig) (TextGenerator, error) {
	switch cfg.Provider {
	case ProviderOpenAI, "":
		return NewChatClient(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Temperature), nil
	case ProviderOpenAIAssistant:
		return NewAssistantClient(cfg.APIKey, cfg.BaseURL, cfg.AssistantID, cfg.PollInterval), nil
	case ProviderGemini:
		return NewGeminiClient(ctx, cfg.APIKey, cfg.Model, cfg.Temperature)
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}
