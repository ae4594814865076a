package retrieval

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Harshitk-cp/fitcheck/internal/cache"
	"github.com/Harshitk-cp/fitcheck/internal/domain"
	"github.com/Harshitk-cp/fitcheck/internal/embedding"
)

func TestValidateOptions(t *testing.T) {
	assert.NoError(t, ValidateOptions(DefaultOptions()))
	assert.NoError(t, ValidateOptions(domain.SearchOptions{MaxResults: 20, SimilarityFloor: 0}))
	assert.True(t, errors.Is(ValidateOptions(domain.SearchOptions{MaxResults: 0, SimilarityFloor: 0.5}), domain.ErrInvalidInput))
	assert.True(t, errors.Is(ValidateOptions(domain.SearchOptions{MaxResults: 21, SimilarityFloor: 0.5}), domain.ErrInvalidInput))
	assert.True(t, errors.Is(ValidateOptions(domain.SearchOptions{MaxResults: 5, SimilarityFloor: 1.2}), domain.ErrInvalidInput))
}

func TestRank(t *testing.T) {
	in := []domain.EvidenceItem{
		{ID: 1, Similarity: 0.55},
		{ID: 2, Similarity: 0.91},
		{ID: 3, Similarity: 0.40},
		{ID: 4, Similarity: 0.55},
		{ID: 5, Similarity: 0.77},
	}
	got := rank(in, domain.SearchOptions{MaxResults: 3, SimilarityFloor: 0.5})
	ids := make([]int64, len(got))
	for i, it := range got {
		ids[i] = it.ID
	}
	assert.Equal(t, []int64{2, 5, 1}, ids)
}

func TestHTTPClient_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		var req searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "creatine increases strength", req.Query)
		assert.Equal(t, 5, req.MaxResults)
		assert.InDelta(t, 0.5, req.SimilarityThreshold, 1e-9)

		_, _ = w.Write([]byte(`{
			"query": "creatine increases strength",
			"results": [
				{"id": 2, "title": "B", "text_chunk": "b", "similarity_score": 0.71, "metadata": {"year": 2018}, "paper_id": "b", "chunk_index": 0},
				{"id": 1, "title": "A", "abstract": "abs", "text_chunk": "a", "similarity_score": 0.88, "metadata": {}, "paper_id": "a", "chunk_index": 3}
			],
			"total_results": 2,
			"search_time_ms": 12.5
		}`))
	}))
	defer server.Close()

	c := NewHTTPClient(server.URL+"/", time.Second, zap.NewNop())
	got, err := c.Search(context.Background(), "  creatine increases strength ", DefaultOptions())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Title)
	assert.Equal(t, 3, got[0].ChunkIndex)
	assert.Equal(t, "abs", got[0].Abstract)
	assert.Equal(t, "2018", got[1].MetaString("year"))
}

func TestHTTPClient_ServerErrorIsRetrievalUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"Database search error"}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewHTTPClient(server.URL, time.Second, zap.NewNop()).Search(context.Background(), "q", DefaultOptions())
	assert.True(t, errors.Is(err, domain.ErrRetrievalUnavailable), "got %v", err)
}

func TestHTTPClient_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewHTTPClient(url, time.Second, zap.NewNop()).Search(context.Background(), "q", DefaultOptions())
	assert.True(t, errors.Is(err, domain.ErrRetrievalUnavailable), "got %v", err)
}

func TestHTTPClient_EmptyQuery(t *testing.T) {
	_, err := NewHTTPClient("http://unused", time.Second, zap.NewNop()).Search(context.Background(), "   ", DefaultOptions())
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

// MockPaperStore mocks the PaperStore interface.
type MockPaperStore struct {
	mock.Mock
}

func (m *MockPaperStore) Search(ctx context.Context, emb []float32, opts domain.SearchOptions) ([]domain.EvidenceItem, error) {
	args := m.Called(ctx, emb, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.EvidenceItem), args.Error(1)
}

func (m *MockPaperStore) InsertChunks(ctx context.Context, chunks []domain.PaperChunk) error {
	return m.Called(ctx, chunks).Error(0)
}

func (m *MockPaperStore) Stats(ctx context.Context) (*domain.CorpusStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CorpusStats), args.Error(1)
}

func (m *MockPaperStore) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func TestLocalSearcher(t *testing.T) {
	ctx := context.Background()
	store := new(MockPaperStore)
	opts := domain.SearchOptions{MaxResults: 2, SimilarityFloor: 0.6}
	store.On("Search", ctx, mock.AnythingOfType("[]float32"), opts).Return([]domain.EvidenceItem{
		{ID: 1, Similarity: 0.65},
		{ID: 2, Similarity: 0.95},
		{ID: 3, Similarity: 0.7},
	}, nil)

	s := NewLocalSearcher(embedding.NewMockClient(32), store)
	got, err := s.Search(ctx, "protein timing", opts)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].ID)
	assert.Equal(t, int64(3), got[1].ID)
	store.AssertExpectations(t)
}

func TestLocalSearcher_Failures(t *testing.T) {
	ctx := context.Background()

	failingEmbedder := embedding.NewMockClient(8)
	failingEmbedder.Err = errors.New("model not loaded")
	_, err := NewLocalSearcher(failingEmbedder, new(MockPaperStore)).Search(ctx, "q", DefaultOptions())
	assert.True(t, errors.Is(err, domain.ErrRetrievalUnavailable))

	store := new(MockPaperStore)
	store.On("Search", ctx, mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))
	_, err = NewLocalSearcher(embedding.NewMockClient(8), store).Search(ctx, "q", DefaultOptions())
	assert.True(t, errors.Is(err, domain.ErrRetrievalUnavailable))
}

type countingRetriever struct {
	calls atomic.Int32
	items []domain.EvidenceItem
	err   error
}

func (r *countingRetriever) Search(context.Context, string, domain.SearchOptions) ([]domain.EvidenceItem, error) {
	r.calls.Add(1)
	return r.items, r.err
}

func TestCached(t *testing.T) {
	ctx := context.Background()
	next := &countingRetriever{items: []domain.EvidenceItem{{ID: 7, Title: "Creatine", Similarity: 0.9}}}
	c := NewCached(next, cache.NewMemoryCache(time.Minute, time.Minute), time.Minute, zap.NewNop())

	for i := 0; i < 3; i++ {
		got, err := c.Search(ctx, "creatine", DefaultOptions())
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Creatine", got[0].Title)
	}
	assert.Equal(t, int32(1), next.calls.Load())

	_, err := c.Search(ctx, "creatine", domain.SearchOptions{MaxResults: 10, SimilarityFloor: 0.5})
	require.NoError(t, err)
	assert.Equal(t, int32(2), next.calls.Load())
}

func TestCached_ErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	next := &countingRetriever{err: domain.NewError(domain.KindRetrievalUnavailable, "down", nil)}
	c := NewCached(next, cache.NewMemoryCache(time.Minute, time.Minute), time.Minute, zap.NewNop())

	_, err := c.Search(ctx, "q", DefaultOptions())
	assert.Error(t, err)
	_, err = c.Search(ctx, "q", DefaultOptions())
	assert.Error(t, err)
	assert.Equal(t, int32(2), next.calls.Load())
}

func TestHTTPClient_Stats(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stats", r.URL.Path)
		assert.Contains(t, r.UserAgent(), "fitcheck/")
		_, _ = w.Write([]byte(`{"total_chunks": 120, "unique_papers": 14, "avg_chunk_length": 2810.5, "first_ingestion": "2024-01-02T03:04:05", "last_ingestion": null}`))
	}))
	defer server.Close()

	stats, err := NewHTTPClient(server.URL, time.Second, zap.NewNop()).Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(120), stats.TotalChunks)
	assert.Equal(t, int64(14), stats.UniquePapers)
	require.NotNil(t, stats.FirstIngestion)
	assert.Nil(t, stats.LastIngestion)
}
