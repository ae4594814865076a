package domain

import "strings"

type VerdictLabel string

const (
	VerdictSupported            VerdictLabel = "SUPPORTED"
	VerdictPartiallySupported   VerdictLabel = "PARTIALLY_SUPPORTED"
	VerdictNotSupported         VerdictLabel = "NOT_SUPPORTED"
	VerdictInsufficientEvidence VerdictLabel = "INSUFFICIENT_EVIDENCE"
)

// ParseVerdictLabel normalizes a model-provided verdict. Unknown values are reported as false.
func ParseVerdictLabel(s string) (VerdictLabel, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	switch VerdictLabel(s) {
	case VerdictSupported, VerdictPartiallySupported, VerdictNotSupported, VerdictInsufficientEvidence:
		return VerdictLabel(s), true
	}
	return "", false
}

type ConfidenceLabel string

const (
	ConfidenceHigh       ConfidenceLabel = "high"
	ConfidenceModerate   ConfidenceLabel = "moderate"
	ConfidenceLow        ConfidenceLabel = "low"
	ConfidenceNoEvidence ConfidenceLabel = "no_evidence"
)

// ParseConfidenceLabel normalizes a model-provided confidence. Only high, moderate and low
// are accepted from a model; no_evidence is reserved for empty retrievals.
func ParseConfidenceLabel(s string) (ConfidenceLabel, bool) {
	switch ConfidenceLabel(strings.ToLower(strings.TrimSpace(s))) {
	case ConfidenceHigh:
		return ConfidenceHigh, true
	case ConfidenceModerate, "medium":
		return ConfidenceModerate, true
	case ConfidenceLow:
		return ConfidenceLow, true
	}
	return "", false
}

// SynthesisMethod records which path produced a verdict.
type SynthesisMethod string

const (
	SynthesisLLM         SynthesisMethod = "llm"
	SynthesisLLMUnparsed SynthesisMethod = "llm_unparsed"
	SynthesisRuleBased   SynthesisMethod = "rule_based"
	SynthesisNone        SynthesisMethod = "none"
)

// Verdict is the structured outcome of evaluating one claim. It is never mutated after
// creation; fallbacks build a replacement.
type Verdict struct {
	Label           VerdictLabel    `json:"verdict"`
	Confidence      ConfidenceLabel `json:"confidence"`
	Summary         string          `json:"summary"`
	KeyPoints       []string        `json:"key_points"`
	ReliabilityNote string          `json:"reliability_note"`
	SourcesAnalyzed int             `json:"sources_analyzed"`
	Method          SynthesisMethod `json:"synthesis_method"`
	Degraded        bool            `json:"degraded"`
}

// NoEvidenceVerdict is returned when retrieval finds nothing above the similarity floor.
func NoEvidenceVerdict() Verdict {
	return Verdict{
		Label:           VerdictInsufficientEvidence,
		Confidence:      ConfidenceNoEvidence,
		Summary:         "No relevant research was found in the corpus for this claim.",
		KeyPoints:       []string{"No studies matched the claim above the similarity threshold"},
		ReliabilityNote: "Absence of indexed evidence is not evidence against the claim.",
		SourcesAnalyzed: 0,
		Method:          SynthesisNone,
	}
}

// FailedVerdict is the placeholder attached to a claim whose verification task failed.
func FailedVerdict() Verdict {
	return Verdict{
		Label:           VerdictInsufficientEvidence,
		Confidence:      ConfidenceLow,
		Summary:         "Verification could not be completed for this claim.",
		KeyPoints:       []string{"Evidence retrieval or synthesis failed"},
		ReliabilityNote: "This result reflects a technical failure, not an assessment of the claim.",
		Method:          SynthesisNone,
		Degraded:        true,
	}
}
