package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Harshitk-cp/fitcheck/internal/domain"
	"github.com/Harshitk-cp/fitcheck/internal/llm"
	"github.com/Harshitk-cp/fitcheck/internal/llmjson"
)

const (
	// ExtractionMaxTokens bounds the claim list reply.
	ExtractionMaxTokens = 1000
	// ExtractionTemperature is kept low: extraction is closer to classification than writing.
	ExtractionTemperature = 0.1
)

// ExtractionService pulls verifiable claims out of a transcript.
type ExtractionService struct {
	completion domain.CompletionClient
	logger     *zap.Logger
}

func NewExtractionService(cc domain.CompletionClient, logger *zap.Logger) *ExtractionService {
	return &ExtractionService{completion: cc, logger: logger}
}

// Extract returns the claims in transcript in order of first appearance.
// An unparsable reply yields no claims; a failed completion call is
// ExtractionServiceUnavailable.
func (s *ExtractionService) Extract(ctx context.Context, transcript string) ([]domain.Claim, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, domain.NewError(domain.KindInvalidInput, "transcript is empty", nil)
	}
	if s.completion == nil {
		return nil, domain.NewError(domain.KindExtractionServiceUnavailable, "no completion service is configured", nil)
	}

	reply, err := s.completion.Complete(ctx, domain.CompletionRequest{
		System:      llm.ExtractionSystemPrompt,
		Prompt:      fmt.Sprintf(llm.ExtractionPrompt, transcript),
		MaxTokens:   ExtractionMaxTokens,
		Temperature: ExtractionTemperature,
	})
	if err != nil {
		return nil, domain.NewError(domain.KindExtractionServiceUnavailable, "claim extraction failed", err)
	}

	values, ok := llmjson.ParseArray(reply)
	if !ok {
		s.logger.Warn("extraction reply contained no JSON array",
			zap.String("reply", llmjson.Snippet(reply, 160)),
		)
		return []domain.Claim{}, nil
	}

	claims := normalizeClaims(values)
	if dropped := len(values) - len(claims); dropped > 0 {
		s.logger.Debug("discarded extraction entries", zap.Int("dropped", dropped))
	}
	return claims, nil
}

// normalizeClaims keeps non-blank strings, trimmed and deduplicated.
func normalizeClaims(values []any) []domain.Claim {
	claims := make([]domain.Claim, 0, len(values))
	for _, v := range values {
		text, ok := v.(string)
		if !ok {
			continue
		}
		if c, ok := domain.NewClaim(text); ok {
			claims = append(claims, c)
		}
	}
	return domain.DedupeClaims(claims)
}
