package memory

import (
	"context"
	"slices"
	"time"

	"github.com/patrickmn/go-cache"

	"todolist/internal/core/domain"
	"todolist/internal/core/port"
	"todolist/internal/core/telemetry"
)

const listKey = "todos:list"

// ListCache stores the collection in an in-process go-cache.
type ListCache struct {
	cache   *cache.Cache
	metrics *telemetry.AppMetrics
}

var _ port.ListCache = (*ListCache)(nil)

func NewListCache(metrics *telemetry.AppMetrics) *ListCache {
	return &ListCache{
		cache:   cache.New(5*time.Minute, 10*time.Minute),
		metrics: metrics,
	}
}

func (c *ListCache) Get(ctx context.Context) ([]domain.Todo, bool, error) {
	value, found := c.cache.Get(listKey)

	if !found {
		if c.metrics != nil {
			c.metrics.RecordCacheMiss(ctx, "list")
		}
		return nil, false, nil
	}

	if c.metrics != nil {
		c.metrics.RecordCacheHit(ctx, "list")
	}

	return slices.Clone(value.([]domain.Todo)), true, nil
}

func (c *ListCache) Set(ctx context.Context, todos []domain.Todo, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = cache.DefaultExpiration
	}

	c.cache.Set(listKey, slices.Clone(todos), ttl)

	return nil
}

func (c *ListCache) Invalidate(ctx context.Context) error {
	c.cache.Delete(listKey)
	return nil
}

func (c *ListCache) Close() error {
	c.cache.Flush()
	return nil
}
