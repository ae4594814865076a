package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/Harshitk-cp/fitcheck/internal/domain"
)

const (
	openAIBaseURL = "https://api.openai.com/v1"
	chatModel     = openai.GPT4oMini
)

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	name   string
	model  string
	client *openai.Client
	retry  retryPolicy
}

func NewOpenAIClient(apiKey string, opts ...Option) *OpenAIClient {
	return newOpenAICompatible(ProviderOpenAI, apiKey, openAIBaseURL, chatModel, opts)
}

func newOpenAICompatible(name, apiKey, baseURL, model string, opts []Option) *OpenAIClient {
	o := buildOptions(baseURL, model, opts)

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = o.baseURL
	cfg.HTTPClient = o.httpClient

	return &OpenAIClient{
		name:   name,
		model:  o.model,
		client: openai.NewClientWithConfig(cfg),
		retry:  o.retry,
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	chatReq := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}

	out, err := c.retry.do(ctx, func(ctx context.Context) (string, error) {
		resp, err := c.client.CreateChatCompletion(ctx, chatReq)
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("%s API returned no choices", c.name)
		}
		return strings.TrimSpace(resp.Choices[0].Message.Content), nil
	})
	if err != nil {
		return "", Classify(c.name, err)
	}
	return out, nil
}
