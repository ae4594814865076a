package embedding

import (
	"context"
	"fmt"

	"github.com/Harshitk-cp/fitcheck/internal/domain"
)

// Provider constants
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderMock   = "mock"
)

// NewClient creates an embedding client based on the provider name.
// dimensions must match the vector column of the research corpus.
// Returns an error if the provider is unknown or the API key is empty (except for mock).
func NewClient(ctx context.Context, provider, apiKey string, dimensions int) (domain.EmbeddingClient, error) {
	switch provider {
	case ProviderOpenAI:
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for OpenAI embedding provider")
		}
		return NewOpenAIClient(apiKey, "", dimensions), nil

	case ProviderGemini:
		if apiKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for Gemini embedding provider")
		}
		return NewGenAIClient(ctx, apiKey, dimensions)

	case ProviderMock:
		return NewMockClient(dimensions), nil

	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (valid options: openai, gemini, mock)", provider)
	}
}
