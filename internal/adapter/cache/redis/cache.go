package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"todolist/internal/core/domain"
	"todolist/internal/core/port"
	"todolist/internal/core/telemetry"
)

const DefaultKey = "todolist:todos:list"

// ListCache caches the collection as JSON in Redis.
type ListCache struct {
	rdb     *goredis.Client
	key     string
	metrics *telemetry.AppMetrics
}

var _ port.ListCache = (*ListCache)(nil)

func NewListCache(rdb *goredis.Client, key string, metrics *telemetry.AppMetrics) *ListCache {
	if key == "" {
		key = DefaultKey
	}

	return &ListCache{rdb: rdb, key: key, metrics: metrics}
}

// Dial connects to addr and pings it once.
func Dial(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}

	return rdb, nil
}

func (c *ListCache) Get(ctx context.Context) ([]domain.Todo, bool, error) {
	b, err := c.rdb.Get(ctx, c.key).Bytes()

	if errors.Is(err, goredis.Nil) {
		c.record(ctx, false)
		return nil, false, nil
	}

	if err != nil {
		return nil, false, err
	}

	var todos []domain.Todo
	if err := json.Unmarshal(b, &todos); err != nil {
		return nil, false, err
	}

	c.record(ctx, true)

	return todos, true, nil
}

func (c *ListCache) Set(ctx context.Context, todos []domain.Todo, ttl time.Duration) error {
	if todos == nil {
		todos = []domain.Todo{}
	}

	b, err := json.Marshal(todos)
	if err != nil {
		return err
	}

	return c.rdb.Set(ctx, c.key, b, ttl).Err()
}

func (c *ListCache) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, c.key).Err()
}

func (c *ListCache) Close() error {
	return c.rdb.Close()
}

func (c *ListCache) record(ctx context.Context, hit bool) {
	if c.metrics == nil {
		return
	}

	if hit {
		c.metrics.RecordCacheHit(ctx, "list")
	} else {
		c.metrics.RecordCacheMiss(ctx, "list")
	}
}
