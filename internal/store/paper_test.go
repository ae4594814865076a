package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Harshitk-cp/fitcheck/internal/domain"
)

// testPool connects to TEST_DATABASE_URL and applies the schema, or skips.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = Migrate(ctx, pool, filepath.Join("..", "..", "migrations"))
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `TRUNCATE research_papers`)
	require.NoError(t, err)
	return pool
}

func unitVector(hot int) []float32 {
	v := make([]float32, 384)
	v[hot] = 1
	return v
}

func TestPaperStore_InsertSearchStats(t *testing.T) {
	pool := testPool(t)
	s := NewPaperStore(pool)
	ctx := context.Background()

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalChunks)
	assert.Nil(t, stats.FirstIngestion)

	near := unitVector(0)
	near[1] = 0.2
	err = s.InsertChunks(ctx, []domain.PaperChunk{
		{PaperID: "creatine_2019", Title: "Creatine and strength", Text: "Creatine improves strength.", ChunkIndex: 0, Embedding: unitVector(0), Metadata: map[string]any{"year": 2019}},
		{PaperID: "creatine_2019", Title: "Creatine and strength", Text: "Loading phase details.", ChunkIndex: 1, Embedding: near},
		{PaperID: "sleep_2020", Title: "Sleep and recovery", Text: "Sleep aids recovery.", ChunkIndex: 0, Embedding: unitVector(5)},
	})
	require.NoError(t, err)

	results, err := s.Search(ctx, unitVector(0), domain.SearchOptions{MaxResults: 5, SimilarityFloor: 0.5})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Creatine improves strength.", results[0].Text)
	assert.InDelta(t, 1.0, results[0].Similarity, 1e-4)
	assert.GreaterOrEqual(t, results[0].Similarity, results[1].Similarity)
	assert.Equal(t, "2019", results[0].MetaString("year"))

	stats, err = s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalChunks)
	assert.Equal(t, int64(2), stats.UniquePapers)
	assert.NotNil(t, stats.LastIngestion)

	titles, err := s.Titles(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"Creatine and strength": true, "Sleep and recovery": true}, titles)

	require.NoError(t, s.Ping(ctx))
}
