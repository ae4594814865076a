package transcript

import (
	"context"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/Harshitk-cp/fitcheck/internal/llm"
)

// SpeechToText turns an audio file into text.
type SpeechToText interface {
	TranscribeFile(ctx context.Context, path string) (string, error)
}

// WhisperTranscriber uses the OpenAI audio transcription endpoint.
type WhisperTranscriber struct {
	client *openai.Client
	model  string
}

// NewWhisperTranscriber returns a Whisper client. An empty baseURL uses the OpenAI API.
func NewWhisperTranscriber(apiKey, baseURL string) *WhisperTranscriber {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &WhisperTranscriber{
		client: openai.NewClientWithConfig(cfg),
		model:  openai.Whisper1,
	}
}

func (w *WhisperTranscriber) TranscribeFile(ctx context.Context, path string) (string, error) {
	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		FilePath: path,
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return "", llm.Classify("whisper", err)
	}
	return strings.TrimSpace(resp.Text), nil
}
