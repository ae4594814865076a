package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Harshitk-cp/fitcheck/internal/domain"
	"github.com/Harshitk-cp/fitcheck/internal/llm"
)

func evidence(scores ...float64) []domain.EvidenceItem {
	items := make([]domain.EvidenceItem, len(scores))
	for i, s := range scores {
		items[i] = domain.EvidenceItem{
			ID:         int64(i + 1),
			Title:      "Study " + string(rune('A'+i)),
			Text:       "Participants supplementing creatine gained strength over twelve weeks.",
			Similarity: s,
			Metadata: map[string]any{
				"authors": []any{"Smith J", "Doe A"},
				"journal": "J Strength Cond Res",
				"year":    float64(2019 + i),
			},
		}
	}
	return items
}

func TestSynthesisService_LLMVerdict(t *testing.T) {
	cc := &llm.MockClient{Response: "```json\n" + `{
		"verdict": "supported",
		"confidence": "HIGH",
		"summary": " Strong evidence. ",
		"key_points": ["Consistent strength gains", "", 7],
		"sources_analyzed": 2,
		"reliability_note": "Randomized trials."
	}` + "\n```"}
	svc := NewSynthesisService(cc, zap.NewNop())

	got := svc.Synthesize(context.Background(), domain.Claim{Text: "Creatine increases strength."}, evidence(0.9, 0.8))

	want := domain.Verdict{
		Label:           domain.VerdictSupported,
		Confidence:      domain.ConfidenceHigh,
		Summary:         "Strong evidence.",
		KeyPoints:       []string{"Consistent strength gains"},
		ReliabilityNote: "Randomized trials.",
		SourcesAnalyzed: 2,
		Method:          domain.SynthesisLLM,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("verdict mismatch (-want +got):\n%s", diff)
	}

	calls := cc.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, SynthesisMaxTokens, calls[0].MaxTokens)
	assert.Contains(t, calls[0].Prompt, "Creatine increases strength.")
	assert.Contains(t, calls[0].Prompt, "Study 1: Study A")
	assert.Contains(t, calls[0].Prompt, "Relevance: 90.0%")
	assert.Contains(t, calls[0].Prompt, "Authors: Smith J, Doe A | Journal: J Strength Cond Res | Year: 2019")
}

func TestSynthesisService_UnknownLabelsAreNormalized(t *testing.T) {
	cc := &llm.MockClient{Response: `{"verdict":"MOSTLY TRUE","confidence":"certain","summary":"x"}`}
	svc := NewSynthesisService(cc, zap.NewNop())

	got := svc.Synthesize(context.Background(), domain.Claim{Text: "c"}, evidence(0.7, 0.6, 0.55))
	assert.Equal(t, domain.VerdictInsufficientEvidence, got.Label)
	assert.Equal(t, domain.ConfidenceLow, got.Confidence)
	assert.Equal(t, 3, got.SourcesAnalyzed)
	assert.Equal(t, []string{}, got.KeyPoints)
	assert.False(t, got.Degraded)
}

func TestSynthesisService_UnparsableReplyIsDegraded(t *testing.T) {
	reply := strings.Repeat("The evidence broadly supports this claim. ", 10)
	cc := &llm.MockClient{Response: reply}
	svc := NewSynthesisService(cc, zap.NewNop())

	got := svc.Synthesize(context.Background(), domain.Claim{Text: "c"}, evidence(0.9))
	assert.Equal(t, domain.VerdictInsufficientEvidence, got.Label)
	assert.Equal(t, domain.ConfidenceLow, got.Confidence)
	assert.Equal(t, domain.SynthesisLLMUnparsed, got.Method)
	assert.True(t, got.Degraded)
	assert.Equal(t, []string{formatErrorKeyPoint}, got.KeyPoints)
	assert.Equal(t, parsingIssueNote, got.ReliabilityNote)
	assert.True(t, strings.HasSuffix(got.Summary, "..."))
	assert.Equal(t, DegradedSummaryLimit+3, len([]rune(got.Summary)))
	assert.Equal(t, 1, got.SourcesAnalyzed)
}

func TestSynthesisService_NoEvidenceSkipsModel(t *testing.T) {
	cc := &llm.MockClient{Response: `{"verdict":"SUPPORTED"}`}
	svc := NewSynthesisService(cc, zap.NewNop())

	got := svc.Synthesize(context.Background(), domain.Claim{Text: "c"}, nil)
	assert.Equal(t, domain.NoEvidenceVerdict(), got)
	assert.Empty(t, cc.Calls())
}

func TestSynthesisService_FallsBackToRules(t *testing.T) {
	svc := NewSynthesisService(llm.NewMockClient(), zap.NewNop())

	got := svc.Synthesize(context.Background(), domain.Claim{Text: "Creatine increases strength."}, evidence(0.9))
	assert.Equal(t, domain.VerdictSupported, got.Label)
	assert.Equal(t, domain.ConfidenceModerate, got.Confidence)
	assert.Equal(t, domain.SynthesisRuleBased, got.Method)
	assert.Equal(t, 1, got.SourcesAnalyzed)
	assert.Contains(t, got.Summary, "Found 1 relevant study")
}

func TestRuleBasedVerdict(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64
		label  domain.VerdictLabel
		conf   domain.ConfidenceLabel
	}{
		{"strong", []float64{0.85, 0.75}, domain.VerdictSupported, domain.ConfidenceModerate},
		{"strong top weak average", []float64{0.81, 0.55}, domain.VerdictSupported, domain.ConfidenceLow},
		{"partial", []float64{0.7, 0.6}, domain.VerdictPartiallySupported, domain.ConfidenceLow},
		{"top exactly 0.8", []float64{0.8}, domain.VerdictPartiallySupported, domain.ConfidenceModerate},
		{"weak", []float64{0.6, 0.5}, domain.VerdictInsufficientEvidence, domain.ConfidenceLow},
		{"top exactly 0.65", []float64{0.65}, domain.VerdictInsufficientEvidence, domain.ConfidenceLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := RuleBasedVerdict(evidence(tt.scores...))
			assert.Equal(t, tt.label, v.Label)
			assert.Equal(t, tt.conf, v.Confidence)
			assert.Equal(t, len(tt.scores), v.SourcesAnalyzed)
			assert.Equal(t, domain.SynthesisRuleBased, v.Method)
			assert.NotEmpty(t, v.KeyPoints)
		})
	}

	assert.Equal(t, domain.NoEvidenceVerdict(), RuleBasedVerdict(nil))
}

func TestCitations(t *testing.T) {
	items := evidence(0.91234, 0.8, 0.7, 0.6)
	items[0].Text = strings.Repeat("word ", 100)
	items[1].Metadata = map[string]any{"author": "Lee K", "doi": "10.1000/xyz"}

	got := Citations(items)
	require.Len(t, got, MaxCitations)

	assert.Equal(t, "Study A", got[0].Title)
	assert.Equal(t, "Smith J, Doe A", got[0].Author)
	assert.Equal(t, "2019", got[0].Year)
	assert.InDelta(t, 91.2, got[0].Similarity, 1e-9)
	assert.Equal(t, CitationExcerptLimit+3, len([]rune(got[0].Excerpt)))

	assert.Equal(t, "Lee K", got[1].Author)
	assert.Equal(t, "10.1000/xyz", got[1].DOI)
	assert.Empty(t, got[1].Journal)

	assert.Empty(t, Citations(nil))
}
