package http

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	cachemem "todolist/internal/adapter/cache/memory"
	cacheredis "todolist/internal/adapter/cache/redis"
	"todolist/internal/adapter/http/handler"
	"todolist/internal/adapter/storage/jsonfile"
	"todolist/internal/adapter/storage/memory"
	"todolist/internal/core/port"
	"todolist/internal/core/service"
	"todolist/internal/core/telemetry"
	"todolist/internal/shared"
)

type Container struct {
	Store     port.TodoStore
	ListCache port.ListCache

	TodoService port.TodoService
	TodoHandler *handler.TodoHandler
}

func NewContainer(ctx context.Context, config *shared.AppConfig, logger *shared.LokiLogger, metrics *telemetry.AppMetrics) (*Container, error) {
	probe := telemetry.NewOTELProbe(logger.Zap(), metrics)

	store, err := newStore(config.Store, logger.Zap(), probe)
	if err != nil {
		return nil, err
	}

	listCache, err := newListCache(ctx, config.Cache, metrics)
	if err != nil {
		return nil, err
	}

	opts := []service.Option{
		service.WithTelemetry(probe),
		service.WithLogger(logger.Zap()),
	}

	if listCache != nil {
		opts = append(opts, service.WithListCache(listCache, config.Cache.TTL))
	}

	todoSvc := service.NewTodoService(store, opts...)

	return &Container{
		Store:       store,
		ListCache:   listCache,
		TodoService: todoSvc,
		TodoHandler: handler.NewTodoHandler(todoSvc, logger),
	}, nil
}

func (c *Container) Close() error {
	if c.ListCache != nil {
		return c.ListCache.Close()
	}
	return nil
}

func newStore(config shared.StoreConfig, logger *zap.Logger, probe port.Telemetry) (port.TodoStore, error) {
	switch config.Backend {
	case "memory":
		return memory.NewStore(), nil
	case "file", "":
		return jsonfile.NewStore(config.Path,
			jsonfile.WithFailOpen(config.FailOpen),
			jsonfile.WithDirectWrite(config.DirectWrite),
			jsonfile.WithLogger(logger),
			jsonfile.WithTelemetry(probe),
		)
	default:
		return nil, fmt.Errorf("unknown store backend %q", config.Backend)
	}
}

// newListCache returns nil when caching is off.
func newListCache(ctx context.Context, config shared.CacheConfig, metrics *telemetry.AppMetrics) (port.ListCache, error) {
	switch config.Backend {
	case "none", "":
		return nil, nil
	case "memory":
		return cachemem.NewListCache(metrics), nil
	case "redis":
		rdb, err := cacheredis.Dial(ctx, config.RedisAddr, config.RedisPassword, config.RedisDB)
		if err != nil {
			return nil, err
		}
		return cacheredis.NewListCache(rdb, config.RedisKey, metrics), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", config.Backend)
	}
}
