// Package retrieval finds research evidence for a claim and scores how strong it is.
package retrieval

import (
	"fmt"
	"sort"

	"github.com/Harshitk-cp/fitcheck/internal/domain"
)

const (
	DefaultMaxResults      = 5
	MaxResultsLimit        = 20
	DefaultSimilarityFloor = 0.5
)

// DefaultOptions returns five results with a 0.5 similarity floor.
func DefaultOptions() domain.SearchOptions {
	return domain.SearchOptions{
		MaxResults:      DefaultMaxResults,
		SimilarityFloor: DefaultSimilarityFloor,
	}
}

// ValidateOptions rejects values outside max_results 1..20 and similarity 0..1.
func ValidateOptions(opts domain.SearchOptions) error {
	if opts.MaxResults < 1 || opts.MaxResults > MaxResultsLimit {
		return domain.NewError(domain.KindInvalidInput,
			fmt.Sprintf("max_results must be between 1 and %d, got %d", MaxResultsLimit, opts.MaxResults), nil)
	}
	if opts.SimilarityFloor < 0 || opts.SimilarityFloor > 1 {
		return domain.NewError(domain.KindInvalidInput,
			fmt.Sprintf("similarity_threshold must be between 0 and 1, got %g", opts.SimilarityFloor), nil)
	}
	return nil
}

// normalize fills a zero MaxResults with the default and clamps both fields into range.
func normalize(opts domain.SearchOptions) domain.SearchOptions {
	switch {
	case opts.MaxResults <= 0:
		opts.MaxResults = DefaultMaxResults
	case opts.MaxResults > MaxResultsLimit:
		opts.MaxResults = MaxResultsLimit
	}
	switch {
	case opts.SimilarityFloor < 0:
		opts.SimilarityFloor = 0
	case opts.SimilarityFloor > 1:
		opts.SimilarityFloor = 1
	}
	return opts
}

// rank orders items by descending similarity, keeping backend order for ties,
// drops anything under the floor and keeps at most MaxResults.
func rank(items []domain.EvidenceItem, opts domain.SearchOptions) []domain.EvidenceItem {
	out := make([]domain.EvidenceItem, 0, len(items))
	for _, it := range items {
		if it.Similarity >= opts.SimilarityFloor {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Similarity > out[j].Similarity })
	if len(out) > opts.MaxResults {
		out = out[:opts.MaxResults]
	}
	return out
}
