package retrieval

import (
	"math"

	"github.com/Harshitk-cp/fitcheck/internal/domain"
)

// Confidence grades evidence strength from similarity scores alone:
//
//	top > 0.8  and avg > 0.7 -> high
//	top > 0.65 and avg > 0.6 -> moderate
//	otherwise                -> low
//
// An empty list is no_evidence. avg is the three-decimal value from AverageSimilarity.
func Confidence(items []domain.EvidenceItem) domain.ConfidenceLabel {
	if len(items) == 0 {
		return domain.ConfidenceNoEvidence
	}
	top, avg := TopSimilarity(items), AverageSimilarity(items)
	switch {
	case top > 0.8 && avg > 0.7:
		return domain.ConfidenceHigh
	case top > 0.65 && avg > 0.6:
		return domain.ConfidenceModerate
	default:
		return domain.ConfidenceLow
	}
}

// TopSimilarity returns the highest score, or 0 for no items.
func TopSimilarity(items []domain.EvidenceItem) float64 {
	top := 0.0
	for i, it := range items {
		if i == 0 || it.Similarity > top {
			top = it.Similarity
		}
	}
	return top
}

// AverageSimilarity returns the mean score rounded to three decimals, or 0 for no items.
func AverageSimilarity(items []domain.EvidenceItem) float64 {
	if len(items) == 0 {
		return 0
	}
	sum := 0.0
	for _, it := range items {
		sum += it.Similarity
	}
	return math.Round(sum/float64(len(items))*1000) / 1000
}
