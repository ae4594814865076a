package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Harshitk-cp/fitcheck/internal/app"
	"github.com/Harshitk-cp/fitcheck/internal/config"
	"github.com/Harshitk-cp/fitcheck/internal/domain"
	"github.com/Harshitk-cp/fitcheck/internal/ingest"
	"github.com/Harshitk-cp/fitcheck/internal/retrieval"
	"github.com/Harshitk-cp/fitcheck/internal/store"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var search searchFlags

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the research corpus directly",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				return errors.New("query must not be empty")
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

			items, err := c.Retriever.Search(runCtx, query, opts)
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}
			if items == nil {
				items = []domain.EvidenceItem{}
			}
			if ctx.jsonOut {
				return writeJSON(cmd, retrieval.SearchResponse{Query: query, Results: items, TotalResults: len(items)})
			}
			renderEvidence(cmd.OutOrStdout(), items)
			return nil
		},
	}
	search.register(cmd)
	return cmd
}

func newStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show corpus statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, cancel := ctx.withTimeout(cmd)
			defer cancel()

			c, err := ctx.components(runCtx, app.Options{})
			if err != nil {
				return err
			}
			defer c.Close()

			if c.Stats == nil {
				return errors.New("no backend can report corpus statistics")
			}
			stats, err := c.Stats.Stats(runCtx)
			if err != nil {
				return fmt.Errorf("stats: %w", err)
			}
			if ctx.jsonOut {
				return writeJSON(cmd, stats)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Papers:           %d\n", stats.UniquePapers)
			fmt.Fprintf(out, "Chunks:           %d\n", stats.TotalChunks)
			fmt.Fprintf(out, "Avg chunk length: %.0f\n", stats.AvgChunkLength)
			if stats.LastIngestion != nil {
				fmt.Fprintf(out, "Last ingestion:   %s\n", *stats.LastIngestion)
			}
			return nil
		},
	}
}

func newIngestCommand(ctx *commandContext) *cobra.Command {
	var (
		concurrency  int
		chunkWords   int
		overlapWords int
		dryRun       bool
	)

	cmd := &cobra.Command{
		Use:   "ingest <papers.jsonl>",
		Short: "Chunk, embed and store research papers",
		Long: `Reads one JSON paper per line (title, abstract, full_text and optional
authors, journal, year, doi, url). Papers whose title is already stored are
skipped. Malformed lines are reported and skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open papers: %w", err)
			}
			defer f.Close()

			papers, lineErrs, err := ingest.ReadJSONL(f)
			if err != nil {
				return err
			}
			for _, le := range lineErrs {
				ctx.logger.Warn("skipping malformed paper", zap.Int("line", le.Line), zap.Error(le.Err))
			}
			chunker := ingest.Chunker{MaxWords: chunkWords, OverlapWords: overlapWords}

			if dryRun {
				return planIngest(cmd, ctx, papers, chunker)
			}

			runCtx, cancel := ctx.withTimeout(cmd)
			defer cancel()

			c, err := ctx.components(runCtx, app.Options{RequireDatabase: true, RequireEmbedder: true})
			if err != nil {
				return err
			}
			defer c.Close()

			ingester, err := c.Ingester()
			if err != nil {
				return err
			}
			ingester.SetChunker(chunker)
			ingester.SetConcurrency(concurrency)
			ingester.SetSourceFile(filepath.Base(path))

			report, err := ingester.Run(runCtx, papers)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}
			if ctx.jsonOut {
				return writeJSON(cmd, report)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Loaded %d paper(s): %d processed, %d skipped, %d failed, %d chunk(s) stored\n",
				report.Loaded, report.Processed, report.Skipped, len(report.Failed), report.Chunks)
			for _, title := range report.Failed {
				fmt.Fprintf(out, "  failed: %s\n", title)
			}
			if len(report.Failed) > 0 {
				return fmt.Errorf("%d paper(s) failed to ingest", len(report.Failed))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "papers embedded in parallel")
	cmd.Flags().IntVar(&chunkWords, "chunk-words", ingest.DefaultChunkWords, "maximum words per chunk")
	cmd.Flags().IntVar(&overlapWords, "overlap-words", ingest.DefaultOverlapWords, "words repeated from the end of the previous chunk")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report the chunks that would be written without embedding or storing")
	return cmd
}

type plannedPaper struct {
	Title  string `json:"title"`
	Chunks int    `json:"chunks"`
}

func planIngest(cmd *cobra.Command, ctx *commandContext, papers []ingest.Paper, chunker ingest.Chunker) error {
	plan := make([]plannedPaper, 0, len(papers))
	for _, p := range papers {
		plan = append(plan, plannedPaper{Title: p.Title, Chunks: len(chunker.Split(ingest.Clean(p.Body())))})
	}
	if ctx.jsonOut {
		return writeJSON(cmd, plan)
	}
	out := cmd.OutOrStdout()
	total := 0
	for _, p := range plan {
		fmt.Fprintf(out, "%4d  %s\n", p.Chunks, p.Title)
		total += p.Chunks
	}
	fmt.Fprintf(out, "%d paper(s), %d chunk(s)\n", len(plan), total)
	return nil
}

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				dir = config.MigrationsPath()
			}
			runCtx, cancel := ctx.withTimeout(cmd)
			defer cancel()

			c, err := ctx.components(runCtx, app.Options{RequireDatabase: true})
			if err != nil {
				return err
			}
			defer c.Close()

			applied, err := store.Migrate(runCtx, c.Pool, dir)
			for _, f := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", filepath.Base(f))
			}
			return err
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "migrations directory (default $MIGRATIONS_PATH or ./migrations)")
	return cmd
}
