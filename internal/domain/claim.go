package domain

import "strings"

// Claim is a normalized, standalone declarative sentence about exercise or nutrition.
type Claim struct {
	Text string `json:"text"`
}

// NewClaim trims text and reports false when nothing is left.
func NewClaim(text string) (Claim, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Claim{}, false
	}
	return Claim{Text: text}, true
}

// DedupeClaims removes exact duplicates, keeping the first occurrence.
func DedupeClaims(claims []Claim) []Claim {
	seen := make(map[string]bool, len(claims))
	out := make([]Claim, 0, len(claims))
	for _, c := range claims {
		if seen[c.Text] {
			continue
		}
		seen[c.Text] = true
		out = append(out, c)
	}
	return out
}

// ClaimTexts returns the text of each claim in order.
func ClaimTexts(claims []Claim) []string {
	texts := make([]string, len(claims))
	for i, c := range claims {
		texts[i] = c.Text
	}
	return texts
}
