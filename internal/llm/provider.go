package llm

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Harshitk-cp/fitcheck/internal/domain"
)

// Provider constants
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderCerebras  = "cerebras"
	ProviderMock      = "mock"
)

type clientOptions struct {
	baseURL    string
	model      string
	httpClient *http.Client
	retry      retryPolicy
}

// Option customizes a completion client.
type Option func(*clientOptions)

// WithBaseURL points the client at a different API root, e.g. a test server.
func WithBaseURL(url string) Option {
	return func(o *clientOptions) { o.baseURL = url }
}

// WithModel overrides the provider's default model.
func WithModel(model string) Option {
	return func(o *clientOptions) { o.model = model }
}

func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) {
		if c != nil {
			o.httpClient = c
		}
	}
}

// WithRetry overrides the retry budget. attempts <= 1 disables retries.
func WithRetry(attempts int, baseDelay, maxDelay time.Duration) Option {
	return func(o *clientOptions) {
		o.retry.attempts = attempts
		o.retry.baseDelay = baseDelay
		o.retry.maxDelay = maxDelay
	}
}

// WithSleeper replaces time-based waiting between retries. Used by tests.
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(o *clientOptions) { o.retry.sleeper = sleeper }
}

func buildOptions(defaultBaseURL, defaultModel string, opts []Option) clientOptions {
	o := clientOptions{
		baseURL:    defaultBaseURL,
		model:      defaultModel,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		retry:      defaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.model == "" {
		o.model = defaultModel
	}
	if o.baseURL == "" {
		o.baseURL = defaultBaseURL
	}
	return o
}

// NewClient creates a completion client based on the provider name.
// Returns an error if the provider is unknown or the API key is empty (except for mock).
func NewClient(provider, apiKey string, opts ...Option) (domain.CompletionClient, error) {
	switch provider {
	case ProviderOpenAI:
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for OpenAI provider")
		}
		return NewOpenAIClient(apiKey, opts...), nil

	case ProviderAnthropic:
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required for Anthropic provider")
		}
		return NewAnthropicClient(apiKey, opts...), nil

	case ProviderGemini:
		if apiKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for Gemini provider")
		}
		return NewGeminiClient(apiKey, opts...), nil

	case ProviderCerebras:
		if apiKey == "" {
			return nil, fmt.Errorf("CEREBRAS_API_KEY is required for Cerebras provider")
		}
		return NewCerebrasClient(apiKey, opts...), nil

	case ProviderMock:
		return NewMockClient(), nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (valid options: openai, anthropic, gemini, cerebras, mock)", provider)
	}
}
