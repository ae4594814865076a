package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Harshitk-cp/fitcheck/internal/app"
	"github.com/Harshitk-cp/fitcheck/internal/domain"
	"github.com/Harshitk-cp/fitcheck/internal/retrieval"
	"github.com/Harshitk-cp/fitcheck/internal/service"
)

type searchFlags struct {
	maxResults int
	threshold  float64
}

func (f *searchFlags) register(cmd *cobra.Command) {
	defaults := retrieval.DefaultOptions()
	cmd.Flags().IntVarP(&f.maxResults, "max-results", "n", defaults.MaxResults, "evidence passages to retrieve per claim (1-20)")
	cmd.Flags().Float64Var(&f.threshold, "threshold", defaults.SimilarityFloor, "minimum similarity for a passage to count (0-1)")
}

func (f *searchFlags) options() (domain.SearchOptions, error) {
	opts := domain.SearchOptions{MaxResults: f.maxResults, SimilarityFloor: f.threshold}
	return opts, retrieval.ValidateOptions(opts)
}

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	var (
		videoURL string
		search   searchFlags
	)

	cmd := &cobra.Command{
		Use:   "verify [claim]",
		Short: "Verify a claim or the claims made in a video",
		Example: `  fitcheck verify "Creatine increases strength in resistance-trained adults"
  fitcheck verify --url https://www.youtube.com/shorts/abc123
  fitcheck verify --json -n 8 "Fasted cardio burns more fat"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			claim := strings.TrimSpace(strings.Join(args, " "))
			if claim == "" && videoURL == "" {
				return errors.New("provide a claim or --url")
			}
			opts, err := search.options()
			if err != nil {
				return err
			}

			runCtx, cancel := ctx.withTimeout(cmd)
			defer cancel()

			c, err := ctx.components(runCtx, app.Options{})
			if err != nil {
				return err
			}
			defer c.Close()

			result, err := c.Pipeline.Verify(runCtx, service.Input{Claim: claim, URL: videoURL}, service.Options{Search: opts})
			if err != nil {
				return fmt.Errorf("verify: %w", err)
			}
			if ctx.jsonOut {
				return writeJSON(cmd, result)
			}
			renderResult(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&videoURL, "url", "u", "", "short-form video URL to transcribe and check")
	search.register(cmd)
	return cmd
}

func newExtractCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract [file]",
		Short: "Extract fitness claims from a transcript",
		Long:  "Reads a transcript from a file, or from stdin when no file or \"-\" is given, and prints the claims found in it.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			transcript, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			runCtx, cancel := ctx.withTimeout(cmd)
			defer cancel()

			c, err := ctx.components(runCtx, app.Options{})
			if err != nil {
				return err
			}
			defer c.Close()

			claims, err := c.Pipeline.ExtractClaims(runCtx, transcript)
			if err != nil {
				return fmt.Errorf("extract: %w", err)
			}
			if ctx.jsonOut {
				return writeJSON(cmd, claims)
			}
			out := cmd.OutOrStdout()
			if len(claims) == 0 {
				fmt.Fprintln(out, "No verifiable fitness claims were found.")
				return nil
			}
			for i, c := range claims {
				fmt.Fprintf(out, "%d. %s\n", i+1, c.Text)
			}
			return nil
		},
	}
	return cmd
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	var (
		data []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return "", fmt.Errorf("read transcript: %w", err)
	}
	return string(data), nil
}
