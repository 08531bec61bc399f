package shared

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"todolist/internal/core/telemetry"
)

func MetricsMiddleware(metrics *telemetry.AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		metrics.IncrementActiveConnections(c.Request.Context())
		defer metrics.DecrementActiveConnections(c.Request.Context())

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		metrics.RecordRequest(
			c.Request.Context(),
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start),
		)
	}
}

func SetupGinMiddlewareWithConfig(router *gin.Engine, serviceName string, metrics *telemetry.AppMetrics, logger *LokiLogger, config *AppConfig) {
	router.Use(RequestIDMiddleware())

	httpsEnforcer := NewHTTPSEnforcer(logger.Zap(), config.EnforceHTTPS)
	router.Use(httpsEnforcer.HTTPSMiddleware())

	router.Use(otelgin.Middleware(serviceName))

	router.Use(LoggingMiddleware(logger))

	router.Use(MetricsMiddleware(metrics))

	if config.ResponseCacheEnabled {
		responseCache := NewResponseCache(logger.Zap(), metrics)
		for path, cacheConfig := range config.ResponseCacheConfigs {
			responseCache.SetConfig(path, cacheConfig)
		}
		router.Use(responseCache.CacheMiddleware())
	}

	if config.RateLimitEnabled {
		rateLimiter := NewRateLimiter(logger.Zap(), metrics, config.RateLimitConfigs)
		router.Use(rateLimiter.RateLimitMiddleware())
	}
}
