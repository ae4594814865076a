package domain

import (
	"time"

	"github.com/google/uuid"
)

type OutcomeStatus string

const (
	OutcomeOK       OutcomeStatus = "ok"
	OutcomeDegraded OutcomeStatus = "degraded"
)

// ClaimOutcome pairs one claim with its verdict. It is the unit of per-claim failure isolation.
type ClaimOutcome struct {
	Index             int             `json:"index"`
	Claim             Claim           `json:"claim"`
	Status            OutcomeStatus   `json:"status"`
	Verdict           Verdict         `json:"verdict"`
	Confidence        ConfidenceLabel `json:"confidence"`
	TopSimilarity     float64         `json:"top_similarity"`
	AverageSimilarity float64         `json:"average_similarity"`
	Citations         []Citation      `json:"citations"`
	Error             string          `json:"error,omitempty"`
}

type InputKind string

const (
	InputClaim InputKind = "claim"
	InputURL   InputKind = "url"
)

// StageTimings records wall-clock time spent in each stage.
type StageTimings struct {
	TranscriptionMs int64 `json:"transcription_ms"`
	ExtractionMs    int64 `json:"extraction_ms"`
	VerificationMs  int64 `json:"verification_ms"`
	TotalMs         int64 `json:"total_ms"`
}

// PipelineResult is built once per request and returned to the caller.
type PipelineResult struct {
	RequestID      uuid.UUID      `json:"request_id"`
	InputKind      InputKind      `json:"input_kind"`
	SourceURL      string         `json:"source_url,omitempty"`
	Transcript     string         `json:"transcript,omitempty"`
	AudioSizeBytes int64          `json:"audio_size_bytes,omitempty"`
	Claims         []Claim        `json:"claims"`
	Outcomes       []ClaimOutcome `json:"outcomes"`
	NoClaimsFound  bool           `json:"no_claims_found"`
	Timings        StageTimings   `json:"timings"`
	CreatedAt      time.Time      `json:"created_at"`
}

// DegradedCount returns how many outcomes came from a failure path.
func (r *PipelineResult) DegradedCount() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == OutcomeDegraded {
			n++
		}
	}
	return n
}

// Transcript is the output of the acquisition and transcription step.
type Transcript struct {
	Text            string `json:"text"`
	SourceSizeBytes int64  `json:"source_size_bytes"`
	WordCount       int    `json:"word_count"`
	Truncated       bool   `json:"truncated"`
}
