package retrieval

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Harshitk-cp/fitcheck/internal/cache"
	"github.com/Harshitk-cp/fitcheck/internal/domain"
)

// Cached memoizes another Retriever. Cache failures are logged and bypassed.
type Cached struct {
	next   domain.Retriever
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

func NewCached(next domain.Retriever, c cache.Cache, ttl time.Duration, logger *zap.Logger) *Cached {
	return &Cached{next: next, cache: c, ttl: ttl, logger: logger}
}

func (c *Cached) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.EvidenceItem, error) {
	opts = normalize(opts)
	key := cache.Key(
		strings.TrimSpace(query),
		strconv.Itoa(opts.MaxResults),
		strconv.FormatFloat(opts.SimilarityFloor, 'f', -1, 64),
	)

	if raw, ok := c.cache.Get(ctx, key); ok {
		var items []domain.EvidenceItem
		if err := json.Unmarshal(raw, &items); err == nil {
			c.logger.Debug("retrieval cache hit", zap.Int("results", len(items)))
			return items, nil
		}
		c.logger.Warn("dropping undecodable retrieval cache entry")
		_ = c.cache.Delete(ctx, key)
	}

	items, err := c.next.Search(ctx, query, opts)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(items)
	if err == nil {
		err = c.cache.Set(ctx, key, raw, c.ttl)
	}
	if err != nil {
		c.logger.Warn("failed to cache retrieval result", zap.Error(err))
	}
	return items, nil
}
