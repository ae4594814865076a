package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Harshitk-cp/fitcheck/internal/domain"
)

func noSleep(time.Duration) {}

func TestOpenAIClient_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 1000, req.MaxTokens)
		assert.InDelta(t, 0.1, req.Temperature, 1e-6)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
		assert.Equal(t, "extract claims", req.Messages[0].Content)
		assert.Equal(t, "Transcript: creatine is great", req.Messages[1].Content)

		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			ID:    "chatcmpl-123",
			Model: "gpt-4o-mini",
			Choices: []openai.ChatCompletionChoice{{
				Message: openai.ChatCompletionMessage{
					Role:    openai.ChatMessageRoleAssistant,
					Content: "  [\"Creatine increases strength.\"]\n",
				},
				FinishReason: "stop",
			}},
		})
	}))
	defer server.Close()

	client := NewOpenAIClient("test-key", WithBaseURL(server.URL))
	out, err := client.Complete(context.Background(), domain.CompletionRequest{
		System:      "extract claims",
		Prompt:      "Transcript: creatine is great",
		MaxTokens:   1000,
		Temperature: 0.1,
	})
	require.NoError(t, err)
	assert.Equal(t, `["Creatine increases strength."]`, out)
}

func TestOpenAIClient_AuthFailureIsNotRetried(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	client := NewOpenAIClient("bad-key", WithBaseURL(server.URL), WithSleeper(noSleep))
	_, err := client.Complete(context.Background(), domain.CompletionRequest{Prompt: "hi"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrAuthenticationFailed), "got %v", err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestCerebrasClient_RetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":{"message":"overloaded"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{{
				Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: "[]"},
			}},
		})
	}))
	defer server.Close()

	client := NewCerebrasClient("key", WithBaseURL(server.URL), WithSleeper(noSleep))
	out, err := client.Complete(context.Background(), domain.CompletionRequest{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "[]", out)
	assert.Equal(t, int32(3), hits.Load())
}

func TestOpenAIClient_ExhaustedRetriesAreUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":{"message":"bad gateway"}}`))
	}))
	defer server.Close()

	client := NewOpenAIClient("key", WithBaseURL(server.URL), WithRetry(2, time.Millisecond, time.Millisecond), WithSleeper(noSleep))
	_, err := client.Complete(context.Background(), domain.CompletionRequest{Prompt: "hi"})
	require.Error(t, err)
	assert.Equal(t, domain.KindUnavailable, domain.KindOf(err))
}

func TestAnthropicClient_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

		var req anthropicRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "system prompt", req.System)
		assert.Equal(t, 1500, req.MaxTokens)
		assert.InDelta(t, 0.3, req.Temperature, 1e-6)

		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"{\"verdict\":\"SUPPORTED\"}"}]}`))
	}))
	defer server.Close()

	client := NewAnthropicClient("key", WithBaseURL(server.URL))
	out, err := client.Complete(context.Background(), domain.CompletionRequest{
		System: "system prompt", Prompt: "p", MaxTokens: 1500, Temperature: 0.3,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"verdict":"SUPPORTED"}`, out)
}

func TestAnthropicClient_HonorsRetryAfter(t *testing.T) {
	var hits atomic.Int32
	var slept []time.Duration
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.Header().Set("Retry-After", "2")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"ok"}]}`))
	}))
	defer server.Close()

	client := NewAnthropicClient("key", WithBaseURL(server.URL), WithSleeper(func(d time.Duration) {
		slept = append(slept, d)
	}))
	out, err := client.Complete(context.Background(), domain.CompletionRequest{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, []time.Duration{2 * time.Second}, slept)
}

func TestGeminiClient_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/"+geminiModel+":generateContent", r.URL.Path)
		assert.Equal(t, "key", r.URL.Query().Get("key"))

		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotNil(t, req.SystemInstruction)
		assert.Equal(t, "sys", req.SystemInstruction.Parts[0].Text)
		assert.Equal(t, 1000, req.GenerationConfig.MaxOutputTokens)

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":" [] "}]}}]}`))
	}))
	defer server.Close()

	client := NewGeminiClient("key", WithBaseURL(server.URL))
	out, err := client.Complete(context.Background(), domain.CompletionRequest{System: "sys", Prompt: "p", MaxTokens: 1000})
	require.NoError(t, err)
	assert.Equal(t, "[]", out)
}

func TestGeminiClient_Forbidden(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"API key not valid"}}`))
	}))
	defer server.Close()

	client := NewGeminiClient("key", WithBaseURL(server.URL), WithSleeper(noSleep))
	_, err := client.Complete(context.Background(), domain.CompletionRequest{Prompt: "p"})
	assert.True(t, errors.Is(err, domain.ErrAuthenticationFailed))
}

func TestClient_ContextDeadlineIsTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := NewAnthropicClient("key", WithBaseURL(server.URL))
	_, err := client.Complete(ctx, domain.CompletionRequest{Prompt: "p"})
	assert.True(t, errors.Is(err, domain.ErrTimeout), "got %v", err)
}

func TestNewClient(t *testing.T) {
	for _, p := range []string{ProviderOpenAI, ProviderAnthropic, ProviderGemini, ProviderCerebras} {
		_, err := NewClient(p, "")
		assert.Error(t, err, p)

		c, err := NewClient(p, "key")
		require.NoError(t, err, p)
		assert.NotNil(t, c)
	}

	c, err := NewClient(ProviderMock, "")
	require.NoError(t, err)
	assert.IsType(t, &MockClient{}, c)

	_, err = NewClient("llama.cpp", "key")
	assert.Error(t, err)
}

func TestMockClient(t *testing.T) {
	m := NewMockClient()
	_, err := m.Complete(context.Background(), domain.CompletionRequest{Prompt: "a"})
	assert.True(t, errors.Is(err, domain.ErrUnavailable))

	m.Response = "[]"
	out, err := m.Complete(context.Background(), domain.CompletionRequest{Prompt: "b"})
	require.NoError(t, err)
	assert.Equal(t, "[]", out)

	calls := m.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "b", calls[1].Prompt)
}

func TestRetryPolicy_Backoff(t *testing.T) {
	p := retryPolicy{baseDelay: time.Second, maxDelay: 5 * time.Second}
	assert.Equal(t, time.Second, p.backoff(1))
	assert.Equal(t, 2*time.Second, p.backoff(2))
	assert.Equal(t, 4*time.Second, p.backoff(3))
	assert.Equal(t, 5*time.Second, p.backoff(4))
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, 3*time.Second, parseRetryAfter("3"))
	assert.Equal(t, time.Duration(0), parseRetryAfter(""))
	assert.Equal(t, time.Duration(0), parseRetryAfter("soon"))
}
