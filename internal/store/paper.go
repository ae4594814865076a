package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/Harshitk-cp/fitcheck/internal/domain"
)

// PaperStore reads and writes embedded research paper chunks.
type PaperStore struct {
	db *pgxpool.Pool
}

func NewPaperStore(db *pgxpool.Pool) *PaperStore {
	return &PaperStore{db: db}
}

// Search returns chunks whose cosine similarity to embedding is at least
// opts.SimilarityFloor, most similar first. Scores are rounded to four decimals.
func (s *PaperStore) Search(ctx context.Context, embedding []float32, opts domain.SearchOptions) ([]domain.EvidenceItem, error) {
	if opts.MaxResults <= 0 {
		opts.MaxResults = 5
	}
	vec := pgvector.NewVector(embedding)

	rows, err := s.db.Query(ctx,
		`SELECT id, paper_id, title, COALESCE(abstract, ''), text_chunk, metadata, chunk_index,
		        1 - (embedding <=> $1) AS score
		 FROM research_papers
		 WHERE 1 - (embedding <=> $1) >= $2
		 ORDER BY embedding <=> $1
		 LIMIT $3`,
		vec, opts.SimilarityFloor, opts.MaxResults,
	)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	var results []domain.EvidenceItem
	for rows.Next() {
		var item domain.EvidenceItem
		if err := rows.Scan(&item.ID, &item.PaperID, &item.Title, &item.Abstract, &item.Text, &item.Metadata, &item.ChunkIndex, &item.Similarity); err != nil {
			return nil, fmt.Errorf("scan search result: %w", err)
		}
		item.Similarity = math.Round(item.Similarity*10000) / 10000
		results = append(results, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search results: %w", err)
	}
	return results, nil
}

// InsertChunks writes all chunks in one transaction. Re-ingesting the same
// (paper_id, chunk_index) replaces the stored chunk.
func (s *PaperStore) InsertChunks(ctx context.Context, chunks []domain.PaperChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, c := range chunks {
		metadata := c.Metadata
		if metadata == nil {
			metadata = map[string]any{}
		}
		batch.Queue(
			`INSERT INTO research_papers (paper_id, title, abstract, text_chunk, embedding, metadata, chunk_index, chunk_length)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 ON CONFLICT (paper_id, chunk_index) DO UPDATE
			 SET title = EXCLUDED.title, abstract = EXCLUDED.abstract, text_chunk = EXCLUDED.text_chunk,
			     embedding = EXCLUDED.embedding, metadata = EXCLUDED.metadata, chunk_length = EXCLUDED.chunk_length`,
			c.PaperID, c.Title, c.Abstract, c.Text, pgvector.NewVector(c.Embedding), metadata, c.ChunkIndex, utf8.RuneCountInString(c.Text),
		)
	}

	br := tx.SendBatch(ctx, batch)
	for i := range chunks {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("insert chunk %d of %s: %w", chunks[i].ChunkIndex, chunks[i].PaperID, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close insert batch: %w", err)
	}
	return tx.Commit(ctx)
}

func (s *PaperStore) Stats(ctx context.Context) (*domain.CorpusStats, error) {
	var (
		stats       domain.CorpusStats
		avg         *float64
		first, last *time.Time
	)
	err := s.db.QueryRow(ctx,
		`SELECT total_chunks, unique_papers, avg_chunk_length, first_ingestion, last_ingestion
		 FROM research_papers_stats`,
	).Scan(&stats.TotalChunks, &stats.UniquePapers, &avg, &first, &last)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &stats, nil
		}
		return nil, fmt.Errorf("stats query: %w", err)
	}
	if avg != nil {
		stats.AvgChunkLength = *avg
	}
	stats.FirstIngestion = formatTime(first)
	stats.LastIngestion = formatTime(last)
	return &stats, nil
}

// Titles returns every distinct paper title already in the corpus.
func (s *PaperStore) Titles(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.Query(ctx, `SELECT DISTINCT title FROM research_papers`)
	if err != nil {
		return nil, fmt.Errorf("titles query: %w", err)
	}
	defer rows.Close()

	titles := make(map[string]bool)
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("scan title: %w", err)
		}
		titles[title] = true
	}
	return titles, rows.Err()
}

func (s *PaperStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
