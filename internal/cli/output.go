package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Harshitk-cp/fitcheck/internal/domain"
	"github.com/Harshitk-cp/fitcheck/internal/llmjson"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderResult(w io.Writer, r *domain.PipelineResult) {
	if r.SourceURL != "" {
		fmt.Fprintf(w, "Source: %s\n", r.SourceURL)
	}
	if r.NoClaimsFound {
		fmt.Fprintln(w, "No verifiable fitness claims were found.")
		return
	}
	for i, o := range r.Outcomes {
		if i > 0 {
			fmt.Fprintln(w)
		}
		renderOutcome(w, i+1, o)
	}
	fmt.Fprintf(w, "\n%d claim(s), %d degraded, %dms total\n", len(r.Outcomes), r.DegradedCount(), r.Timings.TotalMs)
}

func renderOutcome(w io.Writer, n int, o domain.ClaimOutcome) {
	v := o.Verdict
	fmt.Fprintf(w, "[%d] %s\n", n, o.Claim.Text)
	fmt.Fprintf(w, "    Verdict:    %s (%s confidence)\n", v.Label, v.Confidence)
	if o.Status == domain.OutcomeDegraded {
		fmt.Fprintf(w, "    Status:     degraded: %s\n", o.Error)
	}
	fmt.Fprintf(w, "    Evidence:   %s, top %.1f%%, avg %.1f%%\n", o.Confidence, o.TopSimilarity*100, o.AverageSimilarity*100)
	if v.Summary != "" {
		fmt.Fprintf(w, "    Summary:    %s\n", v.Summary)
	}
	for _, p := range v.KeyPoints {
		fmt.Fprintf(w, "      - %s\n", p)
	}
	if v.ReliabilityNote != "" {
		fmt.Fprintf(w, "    Note:       %s\n", v.ReliabilityNote)
	}
	for _, c := range o.Citations {
		fmt.Fprintf(w, "    Source:     %s\n", citationLine(c))
	}
}

func citationLine(c domain.Citation) string {
	parts := []string{c.Title}
	if c.Author != "" {
		parts = append(parts, c.Author)
	}
	if c.Journal != "" {
		parts = append(parts, c.Journal)
	}
	if c.Year != "" {
		parts = append(parts, c.Year)
	}
	return fmt.Sprintf("%s [%.1f%%]", strings.Join(parts, ", "), c.Similarity)
}

func renderEvidence(w io.Writer, items []domain.EvidenceItem) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No matching research found.")
		return
	}
	for i, e := range items {
		fmt.Fprintf(w, "%d. %s (%.3f)\n", i+1, e.Title, e.Similarity)
		if text := strings.TrimSpace(e.Text); text != "" {
			fmt.Fprintf(w, "   %s\n", llmjson.Prefix(text, 160))
		}
	}
}
