package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"todolist/internal/adapter/http/routes"
	"todolist/internal/core/telemetry"
	"todolist/internal/shared"
)

const shutdownTimeout = 10 * time.Second

// StartServerWithConfig serves until ctx is cancelled, then drains in-flight
// requests before returning.
func StartServerWithConfig(ctx context.Context, metrics *telemetry.AppMetrics, logger *shared.LokiLogger, config *shared.AppConfig) error {
	gin.SetMode(config.Server.GinMode)

	container, err := NewContainer(ctx, config, logger, metrics)
	if err != nil {
		return err
	}
	defer container.Close()

	router := routes.SetupRouterWithConfig(routes.HandlersConfig{
		TodoHandler: container.TodoHandler,
	}, metrics, logger, config)

	logger.InfoWithTrace(ctx, "Server starting",
		zap.String("port", config.Server.Port),
		zap.String("environment", config.Environment),
		zap.String("store_backend", config.Store.Backend),
		zap.String("store_path", config.Store.Path),
		zap.String("cache_backend", config.Cache.Backend),
		zap.Bool("rate_limit_enabled", config.RateLimitEnabled),
		zap.Bool("response_cache_enabled", config.ResponseCacheEnabled),
		zap.Bool("https_enforced", config.EnforceHTTPS))

	srv := &http.Server{
		Addr:         ":" + config.Server.Port,
		Handler:      router,
		ReadTimeout:  config.Server.ReadTimeout,
		WriteTimeout: config.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.InfoWithTrace(context.Background(), "Server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
