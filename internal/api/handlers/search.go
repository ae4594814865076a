package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Harshitk-cp/fitcheck/internal/domain"
	"github.com/Harshitk-cp/fitcheck/internal/retrieval"
)

// StatsSource reports corpus statistics.
type StatsSource interface {
	Stats(ctx context.Context) (*domain.CorpusStats, error)
}

type SearchHandler struct {
	retriever domain.Retriever
	stats     StatsSource
}

func NewSearchHandler(retriever domain.Retriever, stats StatsSource) *SearchHandler {
	return &SearchHandler{retriever: retriever, stats: stats}
}

type searchRequest struct {
	Query string `json:"query"`
	searchParams
}

func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	opts := req.options()
	if err := retrieval.ValidateOptions(opts); err != nil {
		writeDomainError(w, r, err)
		return
	}

	start := time.Now()
	items, err := h.retriever.Search(r.Context(), query, opts)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if items == nil {
		items = []domain.EvidenceItem{}
	}

	writeJSON(w, http.StatusOK, retrieval.SearchResponse{
		Query:        query,
		Results:      items,
		TotalResults: len(items),
		SearchTimeMs: float64(time.Since(start).Microseconds()) / 1000,
	})
}

func (h *SearchHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if h.stats == nil {
		writeError(w, http.StatusNotImplemented, "corpus statistics are not available")
		return
	}
	stats, err := h.stats.Stats(r.Context())
	if err != nil {
		writeDomainError(w, r, domain.NewError(domain.KindRetrievalUnavailable, "failed to load corpus statistics", err))
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
