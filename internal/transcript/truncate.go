package transcript

import "strings"

const (
	// MaxWords bounds the transcript handed to claim extraction.
	MaxWords = 4000
	// TruncationMarker is appended to a transcript cut at MaxWords.
	TruncationMarker = " [Transcript truncated for analysis]"
)

// Truncate keeps the first maxWords whitespace-delimited words joined by
// single spaces and appends TruncationMarker. Text within the limit is
// returned unmodified.
func Truncate(text string, maxWords int) (string, bool) {
	words := strings.Fields(text)
	if maxWords <= 0 || len(words) <= maxWords {
		return text, false
	}
	return strings.Join(words[:maxWords], " ") + TruncationMarker, true
}
