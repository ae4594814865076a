package cache

import (
	"context"
	"errors"
	"time"
)

// LayeredCache checks a fast local layer before a shared one and promotes
// shared hits into the local layer.
type LayeredCache struct {
	local    Cache
	shared   Cache
	localTTL time.Duration
}

func NewLayeredCache(local, shared Cache, localTTL time.Duration) *LayeredCache {
	return &LayeredCache{local: local, shared: shared, localTTL: localTTL}
}

func (c *LayeredCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if val, found := c.local.Get(ctx, key); found {
		return val, true
	}
	if val, found := c.shared.Get(ctx, key); found {
		_ = c.local.Set(ctx, key, val, c.localTTL)
		return val, true
	}
	return nil, false
}

func (c *LayeredCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	localTTL := ttl
	if c.localTTL > 0 && (localTTL == 0 || c.localTTL < localTTL) {
		localTTL = c.localTTL
	}
	if err := c.local.Set(ctx, key, value, localTTL); err != nil {
		return err
	}
	return c.shared.Set(ctx, key, value, ttl)
}

func (c *LayeredCache) Delete(ctx context.Context, key string) error {
	return errors.Join(c.local.Delete(ctx, key), c.shared.Delete(ctx, key))
}

func (c *LayeredCache) Clear(ctx context.Context) error {
	return errors.Join(c.local.Clear(ctx), c.shared.Clear(ctx))
}
