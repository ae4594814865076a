package llm

const (
	cerebrasBaseURL = "https://api.cerebras.ai/v1"
	cerebrasModel   = "llama-3.3-70b"
)

// NewCerebrasClient returns a client for Cerebras, which serves an
// OpenAI-compatible chat completions API.
func NewCerebrasClient(apiKey string, opts ...Option) *OpenAIClient {
	return newOpenAICompatible(ProviderCerebras, apiKey, cerebrasBaseURL, cerebrasModel, opts)
}
