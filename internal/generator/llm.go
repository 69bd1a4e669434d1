package generator

import (
	"context"
	"fmt"
	"time"
)

// Supported providers.
const (
	ProviderOpenAI   = "openai"
	ProviderDeepSeek = "deepseek"
	ProviderMock     = "mock"
)

// DefaultDeepSeekBaseURL is used for the deepseek provider when no base URL is configured.
const DefaultDeepSeekBaseURL = "https://api.deepseek.com/v1"

// LLMClient abstracts the text-generation model so it can be swapped or mocked.
type LLMClient interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// LLMSettings is the transport configuration handed to concrete clients.
type LLMSettings struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
}

// NewLLMClient picks the client implementation for settings.Provider.
func NewLLMClient(settings LLMSettings) (LLMClient, error) {
	switch settings.Provider {
	case ProviderMock:
		return MockLLM{}, nil
	case ProviderDeepSeek:
		if settings.BaseURL == "" {
			settings.BaseURL = DefaultDeepSeekBaseURL
		}
		return NewOpenAILLM(settings)
	case ProviderOpenAI, "":
		return NewOpenAILLM(settings)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", settings.Provider)
	}
}
