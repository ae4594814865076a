package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/Harshitk-cp/fitcheck/internal/domain"
	"github.com/Harshitk-cp/fitcheck/internal/llm"
	"github.com/Harshitk-cp/fitcheck/internal/llmjson"
	"github.com/Harshitk-cp/fitcheck/internal/retrieval"
)

const (
	// SynthesisMaxTokens bounds the verdict reply.
	SynthesisMaxTokens = 1500
	// SynthesisTemperature is higher than extraction to allow natural phrasing.
	SynthesisTemperature = 0.3
	// ExcerptLimit caps each evidence excerpt placed in the prompt, in runes.
	ExcerptLimit = 800
	// DegradedSummaryLimit caps the raw reply echoed in a degraded verdict, in runes.
	DegradedSummaryLimit = 200

	formatErrorKeyPoint      = "Response format error - manual review recommended"
	parsingIssueNote         = "Analysis incomplete due to technical parsing issue"
	ruleBasedReliabilityNote = "Automated assessment from similarity scores only; the studies were not reviewed by a language model."
)

// SynthesisService turns a claim and its evidence into a Verdict.
type SynthesisService struct {
	completion domain.CompletionClient
	logger     *zap.Logger
}

// NewSynthesisService accepts a nil completion client, in which case every
// verdict comes from the rule-based synthesizer.
func NewSynthesisService(cc domain.CompletionClient, logger *zap.Logger) *SynthesisService {
	return &SynthesisService{completion: cc, logger: logger}
}

// Synthesize always returns a verdict. Unparsable replies produce a degraded
// verdict and a failed completion call falls back to RuleBasedVerdict.
func (s *SynthesisService) Synthesize(ctx context.Context, claim domain.Claim, evidence []domain.EvidenceItem) domain.Verdict {
	if len(evidence) == 0 {
		return domain.NoEvidenceVerdict()
	}
	if s.completion == nil {
		return RuleBasedVerdict(evidence)
	}

	reply, err := s.completion.Complete(ctx, domain.CompletionRequest{
		System:      llm.SynthesisSystemPrompt,
		Prompt:      BuildSynthesisPrompt(claim, evidence),
		MaxTokens:   SynthesisMaxTokens,
		Temperature: SynthesisTemperature,
	})
	if err != nil {
		s.logger.Warn("synthesis completion failed, using rule-based verdict",
			zap.String("kind", string(domain.KindOf(err))),
			zap.Error(err),
		)
		return RuleBasedVerdict(evidence)
	}

	obj, ok := llmjson.ParseObject(reply)
	if !ok {
		s.logger.Warn("synthesis reply contained no JSON object",
			zap.String("reply", llmjson.Snippet(reply, 160)),
		)
		return unparsedVerdict(reply, len(evidence))
	}
	return verdictFromReply(obj, len(evidence))
}

// BuildSynthesisPrompt embeds the claim and every evidence item.
func BuildSynthesisPrompt(claim domain.Claim, evidence []domain.EvidenceItem) string {
	var sb strings.Builder
	for i, e := range evidence {
		sb.WriteString(fmt.Sprintf(llm.EvidenceEntry,
			i+1,
			e.Title,
			bibliography(e),
			e.Similarity*100,
			llmjson.Prefix(strings.TrimSpace(e.Text), ExcerptLimit),
		))
		sb.WriteString("\n")
	}
	return fmt.Sprintf(llm.SynthesisPrompt, claim.Text, len(evidence), sb.String(), len(evidence))
}

func bibliography(e domain.EvidenceItem) string {
	var parts []string
	for _, f := range []struct{ label, value string }{
		{"Authors", e.Author()},
		{"Journal", e.MetaString("journal")},
		{"Year", e.MetaString("year")},
		{"DOI", e.MetaString("doi")},
	} {
		if f.value != "" {
			parts = append(parts, f.label+": "+f.value)
		}
	}
	if len(parts) == 0 {
		return "Bibliographic details unavailable"
	}
	return strings.Join(parts, " | ")
}

func verdictFromReply(obj map[string]any, evidenceCount int) domain.Verdict {
	label, ok := domain.ParseVerdictLabel(stringField(obj, "verdict"))
	if !ok {
		label = domain.VerdictInsufficientEvidence
	}
	conf, ok := domain.ParseConfidenceLabel(stringField(obj, "confidence"))
	if !ok {
		conf = domain.ConfidenceLow
	}
	sources := evidenceCount
	if n, ok := obj["sources_analyzed"].(float64); ok && n >= 0 && n == math.Trunc(n) {
		sources = int(n)
	}

	var keyPoints []string
	if list, ok := obj["key_points"].([]any); ok {
		for _, v := range list {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				keyPoints = append(keyPoints, strings.TrimSpace(s))
			}
		}
	}
	if keyPoints == nil {
		keyPoints = []string{}
	}

	return domain.Verdict{
		Label:           label,
		Confidence:      conf,
		Summary:         stringField(obj, "summary"),
		KeyPoints:       keyPoints,
		ReliabilityNote: stringField(obj, "reliability_note"),
		SourcesAnalyzed: sources,
		Method:          domain.SynthesisLLM,
	}
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return strings.TrimSpace(s)
}

func unparsedVerdict(reply string, evidenceCount int) domain.Verdict {
	return domain.Verdict{
		Label:           domain.VerdictInsufficientEvidence,
		Confidence:      domain.ConfidenceLow,
		Summary:         llmjson.Prefix(strings.TrimSpace(reply), DegradedSummaryLimit),
		KeyPoints:       []string{formatErrorKeyPoint},
		ReliabilityNote: parsingIssueNote,
		SourcesAnalyzed: evidenceCount,
		Method:          domain.SynthesisLLMUnparsed,
		Degraded:        true,
	}
}

// RuleBasedVerdict grades evidence from similarity scores alone:
// top > 0.8 is SUPPORTED, top > 0.65 is PARTIALLY_SUPPORTED, anything else is
// INSUFFICIENT_EVIDENCE; confidence is moderate when the average exceeds 0.7.
func RuleBasedVerdict(evidence []domain.EvidenceItem) domain.Verdict {
	if len(evidence) == 0 {
		return domain.NoEvidenceVerdict()
	}
	n := len(evidence)
	top := retrieval.TopSimilarity(evidence)
	avg := retrieval.AverageSimilarity(evidence)

	var (
		label  domain.VerdictLabel
		reason string
	)
	switch {
	case top > 0.8:
		label = domain.VerdictSupported
		reason = "The closest study is highly relevant to the claim"
	case top > 0.65:
		label = domain.VerdictPartiallySupported
		reason = "The closest studies are related to the claim but do not match it directly"
	default:
		label = domain.VerdictInsufficientEvidence
		reason = "The retrieved studies are only loosely related to the claim"
	}

	conf := domain.ConfidenceLow
	if avg > 0.7 {
		conf = domain.ConfidenceModerate
	}

	return domain.Verdict{
		Label:      label,
		Confidence: conf,
		Summary: fmt.Sprintf("Found %d relevant %s with a top similarity of %.1f%% and an average of %.1f%%. %s.",
			n, plural(n, "study", "studies"), top*100, avg*100, reason),
		KeyPoints: []string{
			fmt.Sprintf("%d %s retrieved from the research corpus", n, plural(n, "study", "studies")),
			fmt.Sprintf("Highest similarity: %.1f%%", top*100),
			fmt.Sprintf("Average similarity: %.1f%%", avg*100),
			reason,
		},
		ReliabilityNote: ruleBasedReliabilityNote,
		SourcesAnalyzed: n,
		Method:          domain.SynthesisRuleBased,
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
