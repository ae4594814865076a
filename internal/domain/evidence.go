package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// EvidenceItem is one retrieved research passage.
type EvidenceItem struct {
	ID         int64          `json:"id"`
	PaperID    string         `json:"paper_id,omitempty"`
	ChunkIndex int            `json:"chunk_index"`
	Title      string         `json:"title"`
	Abstract   string         `json:"abstract,omitempty"`
	Text       string         `json:"text_chunk"`
	Similarity float64        `json:"similarity_score"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// MetaString returns a bibliographic metadata field as a trimmed string.
// Numbers (e.g. a year decoded from JSON) are formatted without a fraction.
func (e EvidenceItem) MetaString(key string) string {
	if e.Metadata == nil {
		return ""
	}
	switch v := e.Metadata[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case []any:
		parts := make([]string, 0, len(v))
		for _, p := range v {
			if s, ok := p.(string); ok && strings.TrimSpace(s) != "" {
				parts = append(parts, strings.TrimSpace(s))
			}
		}
		return strings.Join(parts, ", ")
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// Author returns the first non-empty of the "author" or "authors" metadata fields.
func (e EvidenceItem) Author() string {
	if a := e.MetaString("author"); a != "" {
		return a
	}
	return e.MetaString("authors")
}

// Citation is a condensed reference to an evidence item shown alongside a verdict.
type Citation struct {
	Title      string  `json:"title"`
	Author     string  `json:"author,omitempty"`
	Journal    string  `json:"journal,omitempty"`
	Year       string  `json:"year,omitempty"`
	DOI        string  `json:"doi,omitempty"`
	Similarity float64 `json:"similarity_percent"`
	Excerpt    string  `json:"excerpt,omitempty"`
}

// SearchOptions bound a retrieval request.
type SearchOptions struct {
	MaxResults      int     `json:"max_results"`
	SimilarityFloor float64 `json:"similarity_threshold"`
}

// PaperChunk is one embedded chunk of a research paper as written by ingestion.
type PaperChunk struct {
	PaperID    string
	Title      string
	Abstract   string
	Text       string
	ChunkIndex int
	Embedding  []float32
	Metadata   map[string]any
}

// CorpusStats summarizes the research corpus.
type CorpusStats struct {
	TotalChunks    int64   `json:"total_chunks"`
	UniquePapers   int64   `json:"unique_papers"`
	AvgChunkLength float64 `json:"avg_chunk_length"`
	FirstIngestion *string `json:"first_ingestion"`
	LastIngestion  *string `json:"last_ingestion"`
}
