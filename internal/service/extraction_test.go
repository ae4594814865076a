package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Harshitk-cp/fitcheck/internal/domain"
	"github.com/Harshitk-cp/fitcheck/internal/llm"
)

func TestExtractionService_Extract(t *testing.T) {
	cc := &llm.MockClient{Response: `["Creatine increases strength.", "  Protein builds muscle. ", "Creatine increases strength.", "", 42]`}
	svc := NewExtractionService(cc, zap.NewNop())

	claims, err := svc.Extract(context.Background(), "creatine makes you strong and protein builds muscle")
	require.NoError(t, err)
	assert.Equal(t, []string{"Creatine increases strength.", "Protein builds muscle."}, domain.ClaimTexts(claims))

	calls := cc.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, ExtractionMaxTokens, calls[0].MaxTokens)
	assert.InDelta(t, ExtractionTemperature, calls[0].Temperature, 1e-6)
	assert.Contains(t, calls[0].Prompt, "creatine makes you strong")
	assert.Equal(t, llm.ExtractionSystemPrompt, calls[0].System)
}

func TestExtractionService_FencedReply(t *testing.T) {
	cc := &llm.MockClient{Response: "Here are the claims:\n```json\n[\"Sleep improves recovery.\"]\n```"}
	svc := NewExtractionService(cc, zap.NewNop())

	claims, err := svc.Extract(context.Background(), "sleep more")
	require.NoError(t, err)
	assert.Equal(t, []string{"Sleep improves recovery."}, domain.ClaimTexts(claims))
}

func TestExtractionService_UnparsableReplyIsEmpty(t *testing.T) {
	cc := &llm.MockClient{Response: "I could not find any claims in this video."}
	svc := NewExtractionService(cc, zap.NewNop())

	claims, err := svc.Extract(context.Background(), "just vibes")
	require.NoError(t, err)
	assert.NotNil(t, claims)
	assert.Empty(t, claims)
}

func TestExtractionService_CompletionFailure(t *testing.T) {
	cc := &llm.MockClient{Error: domain.NewError(domain.KindAuthenticationFailed, "openai rejected the API key", nil)}
	svc := NewExtractionService(cc, zap.NewNop())

	_, err := svc.Extract(context.Background(), "creatine")
	require.Error(t, err)
	assert.Equal(t, domain.KindExtractionServiceUnavailable, domain.KindOf(err))
	assert.True(t, errors.Is(err, domain.ErrExtractionServiceUnavailable))
	assert.True(t, errors.Is(err, domain.ErrAuthenticationFailed), "inner kind should stay reachable")
}

func TestExtractionService_InvalidInput(t *testing.T) {
	cc := &llm.MockClient{Response: "[]"}
	svc := NewExtractionService(cc, zap.NewNop())

	_, err := svc.Extract(context.Background(), "   \n\t")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Empty(t, cc.Calls())

	_, err = NewExtractionService(nil, zap.NewNop()).Extract(context.Background(), "creatine")
	assert.True(t, errors.Is(err, domain.ErrExtractionServiceUnavailable))
}
