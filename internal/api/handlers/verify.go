package handlers

import (
	"context"
	"net/http"

	"github.com/Harshitk-cp/fitcheck/internal/domain"
	"github.com/Harshitk-cp/fitcheck/internal/retrieval"
	"github.com/Harshitk-cp/fitcheck/internal/service"
)

// Verifier is satisfied by *service.PipelineService.
type Verifier interface {
	Verify(ctx context.Context, in service.Input, opts service.Options) (*domain.PipelineResult, error)
	ExtractClaims(ctx context.Context, transcript string) ([]domain.Claim, error)
}

type VerifyHandler struct {
	pipeline Verifier
}

func NewVerifyHandler(pipeline Verifier) *VerifyHandler {
	return &VerifyHandler{pipeline: pipeline}
}

type searchParams struct {
	MaxResults          *int     `json:"max_results,omitempty"`
	SimilarityThreshold *float64 `json:"similarity_threshold,omitempty"`
}

// options starts from the defaults and applies whatever the caller set.
func (p searchParams) options() domain.SearchOptions {
	opts := retrieval.DefaultOptions()
	if p.MaxResults != nil {
		opts.MaxResults = *p.MaxResults
	}
	if p.SimilarityThreshold != nil {
		opts.SimilarityFloor = *p.SimilarityThreshold
	}
	return opts
}

type verifyRequest struct {
	Claim string `json:"claim,omitempty"`
	URL   string `json:"url,omitempty"`
	searchParams
}

type verifyResponse struct {
	*domain.PipelineResult
	DegradedCount int `json:"degraded_count"`
}

func (h *VerifyHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	opts := req.options()
	if err := retrieval.ValidateOptions(opts); err != nil {
		writeDomainError(w, r, err)
		return
	}

	result, err := h.pipeline.Verify(r.Context(), service.Input{Claim: req.Claim, URL: req.URL}, service.Options{Search: opts})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, verifyResponse{PipelineResult: result, DegradedCount: result.DegradedCount()})
}

type extractRequest struct {
	Transcript string `json:"transcript"`
}

type extractResponse struct {
	Claims []string `json:"claims"`
	Count  int      `json:"count"`
}

func (h *VerifyHandler) ExtractClaims(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims, err := h.pipeline.ExtractClaims(r.Context(), req.Transcript)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, extractResponse{Claims: domain.ClaimTexts(claims), Count: len(claims)})
}
