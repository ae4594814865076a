// Package llmjson salvages JSON arrays and objects from free-text model replies.
//
// Completion services are told to reply with raw JSON but regularly wrap it in
// markdown fences or prepend prose. Every function here reports failure as a
// boolean and never panics.
package llmjson

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Kind is the JSON shape a caller expects.
type Kind int

const (
	Array Kind = iota
	Object
)

func (k Kind) String() string {
	if k == Object {
		return "object"
	}
	return "array"
}

func (k Kind) delimiters() (byte, byte) {
	if k == Object {
		return '{', '}'
	}
	return '[', ']'
}

// ParseArray returns the first JSON array found in raw.
func ParseArray(raw string) ([]any, bool) {
	var out []any
	if !Decode(raw, Array, &out) {
		return nil, false
	}
	return out, true
}

// ParseObject returns the first JSON object found in raw.
func ParseObject(raw string) (map[string]any, bool) {
	var out map[string]any
	if !Decode(raw, Object, &out) {
		return nil, false
	}
	return out, true
}

// Decode unmarshals the first candidate of the requested kind into target.
// Candidates are tried in order: the trimmed reply, the reply with a markdown
// fence removed, and the span from the first opening to the last closing
// delimiter of the fence-stripped reply. A candidate whose top-level shape is
// not kind is skipped.
func Decode(raw string, kind Kind, target any) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	if target == nil {
		return false
	}
	for _, candidate := range candidates(raw, kind) {
		if !hasShape(candidate, kind) {
			continue
		}
		if err := json.Unmarshal([]byte(candidate), target); err == nil {
			return true
		}
	}
	return false
}

func candidates(raw string, kind Kind) []string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	out := []string{trimmed}

	stripped := stripCodeFence(trimmed)
	if stripped != trimmed && stripped != "" {
		out = append(out, stripped)
	}

	open, closing := kind.delimiters()
	start := strings.IndexByte(stripped, open)
	end := strings.LastIndexByte(stripped, closing)
	if start >= 0 && end > start {
		span := stripped[start : end+1]
		if span != stripped {
			out = append(out, span)
		}
	}
	return out
}

// hasShape checks the top-level JSON token without decoding the whole value.
func hasShape(candidate string, kind Kind) bool {
	open, _ := kind.delimiters()
	b := bytes.TrimSpace([]byte(candidate))
	return len(b) > 0 && b[0] == open
}

// stripCodeFence removes a leading ``` (optionally tagged json, any case) and
// the last trailing ```.
func stripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	body := strings.TrimLeft(trimmed[3:], " \t\r\n")
	if len(body) >= 4 && strings.EqualFold(body[:4], "json") {
		body = strings.TrimLeft(body[4:], " \t\r\n")
	}
	if idx := strings.LastIndex(body, "```"); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}

// Snippet collapses whitespace and returns at most n runes of raw, followed by
// "..." when anything was cut.
func Snippet(raw string, n int) string {
	clean := strings.Join(strings.Fields(raw), " ")
	if n <= 0 {
		return ""
	}
	runes := []rune(clean)
	if len(runes) <= n {
		return clean
	}
	return string(runes[:n]) + "..."
}

// Prefix returns the first n runes of raw followed by "...", without
// collapsing whitespace. Shorter input is returned unchanged.
func Prefix(raw string, n int) string {
	runes := []rune(raw)
	if n < 0 || len(runes) <= n {
		return raw
	}
	return string(runes[:n]) + "..."
}
