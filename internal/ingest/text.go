// Package ingest loads research papers into the evidence corpus.
package ingest

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	DefaultChunkWords   = 500
	DefaultOverlapWords = 50
)

var (
	pageLine     = regexp.MustCompile(`(?m)^[ \t]*Page \d+.*$`)
	numberLine   = regexp.MustCompile(`(?m)^[ \t]*\d+[ \t]*$`)
	oddPunct     = regexp.MustCompile(`[^\p{L}\p{N}_\s.,!?;:\-()"']+`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Clean strips PDF artifacts from extracted paper text: form feeds,
// "Page N" lines, lines holding only a number and unusual punctuation.
// Whitespace runs collapse to single spaces.
func Clean(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ReplaceAll(text, "\f", "\n")
	text = pageLine.ReplaceAllString(text, "")
	text = numberLine.ReplaceAllString(text, "")
	text = oddPunct.ReplaceAllString(text, " ")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// SplitSentences breaks text after '.', '!' or '?' when followed by whitespace.
func SplitSentences(text string) []string {
	var (
		sentences []string
		start     int
	)
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		if !strings.ContainsRune(".!?", runes[i]) {
			continue
		}
		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		if j == i+1 || j == len(runes) {
			continue
		}
		if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
			sentences = append(sentences, s)
		}
		start = j
		i = j - 1
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// Chunk is a run of whole sentences.
type Chunk struct {
	Text      string
	WordCount int
}

// Chunker groups sentences into chunks of at most MaxWords words; a single
// longer sentence becomes its own chunk. Each chunk after the first starts
// with the trailing sentences of the previous one, up to OverlapWords words.
type Chunker struct {
	MaxWords     int
	OverlapWords int
}

func NewChunker() Chunker {
	return Chunker{MaxWords: DefaultChunkWords, OverlapWords: DefaultOverlapWords}
}

func (c Chunker) Split(text string) []Chunk {
	maxWords := c.MaxWords
	if maxWords <= 0 {
		maxWords = DefaultChunkWords
	}

	var (
		chunks  []Chunk
		current []string
		words   int
	)
	flush := func() {
		chunks = append(chunks, Chunk{Text: strings.Join(current, " "), WordCount: words})
	}

	for _, sentence := range SplitSentences(text) {
		n := len(strings.Fields(sentence))
		if words+n > maxWords && len(current) > 0 {
			flush()
			current, words = c.overlap(current)
		}
		current = append(current, sentence)
		words += n
	}
	if len(current) > 0 {
		flush()
	}
	return chunks
}

// overlap returns the longest suffix of sentences within OverlapWords words.
// It never returns the whole chunk, so every chunk adds new text.
func (c Chunker) overlap(sentences []string) ([]string, int) {
	if c.OverlapWords <= 0 || len(sentences) < 2 {
		return nil, 0
	}
	words, from := 0, len(sentences)
	for from > 1 {
		n := len(strings.Fields(sentences[from-1]))
		if words+n > c.OverlapWords {
			break
		}
		words += n
		from--
	}
	if from == len(sentences) {
		return nil, 0
	}
	out := make([]string, len(sentences)-from)
	copy(out, sentences[from:])
	return out, words
}
