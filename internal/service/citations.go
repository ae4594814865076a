package service

import (
	"math"
	"strings"

	"github.com/Harshitk-cp/fitcheck/internal/domain"
	"github.com/Harshitk-cp/fitcheck/internal/llmjson"
)

const (
	// MaxCitations is the number of studies attached to each claim outcome.
	MaxCitations = 3
	// CitationExcerptLimit caps a citation excerpt, in runes.
	CitationExcerptLimit = 300
)

// Citations condenses the strongest evidence items for display.
// evidence must already be ordered by descending similarity.
func Citations(evidence []domain.EvidenceItem) []domain.Citation {
	n := min(len(evidence), MaxCitations)
	out := make([]domain.Citation, 0, n)
	for _, e := range evidence[:n] {
		out = append(out, domain.Citation{
			Title:      e.Title,
			Author:     e.Author(),
			Journal:    e.MetaString("journal"),
			Year:       e.MetaString("year"),
			DOI:        e.MetaString("doi"),
			Similarity: math.Round(e.Similarity*1000) / 10,
			Excerpt:    llmjson.Prefix(strings.TrimSpace(e.Text), CitationExcerptLimit),
		})
	}
	return out
}
