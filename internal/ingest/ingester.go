package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Harshitk-cp/fitcheck/internal/domain"
)

var ErrNoContent = errors.New("paper has no text")

// Store is the subset of the paper store ingestion writes to.
type Store interface {
	InsertChunks(ctx context.Context, chunks []domain.PaperChunk) error
	Titles(ctx context.Context) (map[string]bool, error)
}

// Report summarizes one ingestion run.
type Report struct {
	Loaded    int      `json:"loaded"`
	Skipped   int      `json:"skipped"`
	Processed int      `json:"processed"`
	Chunks    int      `json:"chunks"`
	Failed    []string `json:"failed"`
}

type Ingester struct {
	embedder    domain.EmbeddingClient
	store       Store
	chunker     Chunker
	concurrency int
	sourceFile  string
	logger      *zap.Logger
	now         func() time.Time
}

func NewIngester(embedder domain.EmbeddingClient, store Store, logger *zap.Logger) *Ingester {
	return &Ingester{
		embedder:    embedder,
		store:       store,
		chunker:     NewChunker(),
		concurrency: 4,
		sourceFile:  "papers.jsonl",
		logger:      logger,
		now:         time.Now,
	}
}

func (i *Ingester) SetChunker(c Chunker) {
	i.chunker = c
}

func (i *Ingester) SetConcurrency(n int) {
	if n > 0 {
		i.concurrency = n
	}
}

// SetSourceFile names the file recorded in chunk metadata when a paper has no source.
func (i *Ingester) SetSourceFile(name string) {
	if name != "" {
		i.sourceFile = name
	}
}

// Run ingests papers whose titles are not yet stored. A failing paper is
// recorded in the report and does not stop the others.
func (i *Ingester) Run(ctx context.Context, papers []Paper) (*Report, error) {
	report := &Report{Loaded: len(papers), Failed: []string{}}

	existing, err := i.store.Titles(ctx)
	if err != nil {
		return nil, fmt.Errorf("load existing titles: %w", err)
	}

	var pending []Paper
	for _, p := range papers {
		if existing[p.title()] {
			report.Skipped++
			continue
		}
		pending = append(pending, p)
	}
	i.logger.Info("starting ingestion",
		zap.Int("loaded", len(papers)),
		zap.Int("skipped", report.Skipped),
		zap.Int("pending", len(pending)),
	)

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(i.concurrency)
	for _, p := range pending {
		g.Go(func() error {
			n, err := i.IngestPaper(ctx, p)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed = append(report.Failed, fmt.Sprintf("%s: %v", p.title(), err))
				i.logger.Warn("paper ingestion failed", zap.String("title", p.title()), zap.Error(err))
				return nil
			}
			report.Processed++
			report.Chunks += n
			return nil
		})
	}
	_ = g.Wait()

	i.logger.Info("ingestion completed",
		zap.Int("processed", report.Processed),
		zap.Int("chunks", report.Chunks),
		zap.Int("failed", len(report.Failed)),
	)
	return report, ctx.Err()
}

// IngestPaper cleans, chunks, embeds and stores one paper, returning the
// number of chunks written.
func (i *Ingester) IngestPaper(ctx context.Context, p Paper) (int, error) {
	body := Clean(p.Body())
	if body == "" {
		return 0, ErrNoContent
	}
	chunks := i.chunker.Split(body)
	if len(chunks) == 0 {
		return 0, ErrNoContent
	}

	texts := make([]string, len(chunks))
	for k, c := range chunks {
		texts[k] = c.Text
	}
	embeddings, err := i.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return 0, fmt.Errorf("embed chunks: got %d embeddings for %d chunks", len(embeddings), len(chunks))
	}

	now := i.now()
	paperID := PaperID(p.title(), now)
	source := strings.TrimSpace(p.Source)
	if source == "" {
		source = i.sourceFile
	}

	rows := make([]domain.PaperChunk, len(chunks))
	for k, c := range chunks {
		meta := p.bibliography()
		meta["chunk_index"] = k
		meta["total_chunks"] = len(chunks)
		meta["word_count"] = c.WordCount
		meta["source_file"] = source
		meta["processed_at"] = now.UTC().Format(time.RFC3339)

		rows[k] = domain.PaperChunk{
			PaperID:    paperID,
			Title:      p.title(),
			Abstract:   strings.TrimSpace(p.Abstract),
			Text:       c.Text,
			ChunkIndex: k,
			Embedding:  embeddings[k],
			Metadata:   meta,
		}
	}

	if err := i.store.InsertChunks(ctx, rows); err != nil {
		return 0, fmt.Errorf("store chunks: %w", err)
	}
	i.logger.Debug("paper ingested", zap.String("paper_id", paperID), zap.Int("chunks", len(rows)))
	return len(rows), nil
}
