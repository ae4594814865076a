package ingest

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"
)

// Paper is one line of the JSONL corpus file.
type Paper struct {
	Title    string `json:"title"`
	Abstract string `json:"abstract"`
	FullText string `json:"full_text"`
	Authors  any    `json:"authors,omitempty"`
	Journal  string `json:"journal,omitempty"`
	Year     any    `json:"year,omitempty"`
	DOI      string `json:"doi,omitempty"`
	URL      string `json:"url,omitempty"`
	Source   string `json:"source,omitempty"`
}

// Body joins the abstract and full text.
func (p Paper) Body() string {
	var sb strings.Builder
	if p.Abstract != "" {
		sb.WriteString(p.Abstract)
		sb.WriteString("\n\n")
	}
	sb.WriteString(p.FullText)
	return sb.String()
}

func (p Paper) title() string {
	if t := strings.TrimSpace(p.Title); t != "" {
		return t
	}
	return "Untitled"
}

// bibliography is the metadata searched evidence exposes to citations.
func (p Paper) bibliography() map[string]any {
	meta := map[string]any{}
	if p.Authors != nil {
		meta["authors"] = p.Authors
	}
	if p.Year != nil {
		meta["year"] = p.Year
	}
	for k, v := range map[string]string{"journal": p.Journal, "doi": p.DOI, "url": p.URL} {
		if v = strings.TrimSpace(v); v != "" {
			meta[k] = v
		}
	}
	return meta
}

// PaperID derives a stable-per-run identifier: the first 50 characters of the
// title, lowercased with spaces as underscores, plus a second-resolution stamp.
func PaperID(title string, at time.Time) string {
	if utf8.RuneCountInString(title) > 50 {
		title = string([]rune(title)[:50])
	}
	slug := strings.ToLower(strings.ReplaceAll(title, " ", "_"))
	return slug + "_" + at.Format("20060102_150405")
}

// LineError records a JSONL line that could not be decoded.
type LineError struct {
	Line int
	Err  error
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

const maxLineBytes = 16 << 20

// ReadJSONL decodes one paper per line. Blank lines are ignored and malformed
// lines are reported without stopping the read.
func ReadJSONL(r io.Reader) ([]Paper, []LineError, error) {
	var (
		papers []Paper
		bad    []LineError
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	line := 0
	for sc.Scan() {
		line++
		raw := strings.TrimSpace(sc.Text())
		if raw == "" {
			continue
		}
		var p Paper
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			bad = append(bad, LineError{Line: line, Err: err})
			continue
		}
		papers = append(papers, p)
	}
	if err := sc.Err(); err != nil {
		return papers, bad, fmt.Errorf("read papers: %w", err)
	}
	return papers, bad, nil
}
