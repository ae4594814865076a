package retrieval

import (
	"context"
	"errors"
	"strings"

	"github.com/Harshitk-cp/fitcheck/internal/domain"
)

// LocalSearcher embeds the query in-process and ranks chunks in the paper store.
type LocalSearcher struct {
	embedder domain.EmbeddingClient
	store    domain.PaperStore
}

func NewLocalSearcher(embedder domain.EmbeddingClient, store domain.PaperStore) *LocalSearcher {
	return &LocalSearcher{embedder: embedder, store: store}
}

func (s *LocalSearcher) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.EvidenceItem, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.NewError(domain.KindInvalidInput, "search query is empty", nil)
	}
	opts = normalize(opts)

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, unavailable("embed query", err)
	}
	items, err := s.store.Search(ctx, vec, opts)
	if err != nil {
		return nil, unavailable("query research corpus", err)
	}
	return rank(items, opts), nil
}

func (s *LocalSearcher) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func unavailable(msg string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domain.NewError(domain.KindTimeout, msg, err)
	}
	return domain.NewError(domain.KindRetrievalUnavailable, msg, err)
}
