package shared

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"todolist/internal/core/telemetry"
	. "todolist/pkg/tracing"
)

type ResponseCacheConfig struct {
	TTL     time.Duration `toml:"ttl"`
	Enabled bool          `toml:"enabled"`
}

// ResponseCache replays successful GET responses for a short TTL. Any
// successful non-GET request flushes it, so reads never outlive a write made
// through this process.
type ResponseCache struct {
	cache   *cache.Cache
	config  map[string]ResponseCacheConfig
	logger  *zap.Logger
	metrics *telemetry.AppMetrics

	// generation changes on every invalidation; a response computed across
	// an invalidation is not stored.
	generation atomic.Uint64
}

type CachedResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Timestamp  time.Time
}

func NewResponseCache(logger *zap.Logger, metrics *telemetry.AppMetrics) *ResponseCache {
	configs := map[string]ResponseCacheConfig{
		"/todos": {
			TTL:     3 * time.Second,
			Enabled: true,
		},
		"default": {
			TTL:     1 * time.Second,
			Enabled: false,
		},
	}

	return &ResponseCache{
		cache:   cache.New(5*time.Minute, 10*time.Minute),
		config:  configs,
		logger:  logger,
		metrics: metrics,
	}
}

func (rc *ResponseCache) CacheMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()

			if status := c.Writer.Status(); isMutation(c.Request.Method) && status >= 200 && status < 300 {
				rc.InvalidateAllCache()
			}
			return
		}

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		config, exists := rc.config[path]
		if !exists {
			config = rc.config["default"]
		}

		if !config.Enabled {
			c.Next()
			return
		}

		cacheKey := rc.generateCacheKey(c, path)

		if entry, found := rc.cache.Get(cacheKey); found {
			cached := entry.(CachedResponse)
			age := time.Since(cached.Timestamp)

			_, span := CreateChildSpan(c.Request.Context(), "cache.response.hit", []attribute.KeyValue{
				attribute.String("cache.path", path),
				attribute.String("cache.age", age.String()),
				attribute.Int("cache.body_size", len(cached.Body)),
			})
			defer span.End()

			if rc.metrics != nil {
				rc.metrics.RecordCacheHit(c.Request.Context(), "response")
			}

			rc.logger.Debug("Cache hit",
				zap.String("path", path),
				zap.Duration("age", age))

			for key, values := range cached.Headers {
				c.Writer.Header()[key] = append([]string(nil), values...)
			}

			c.Header("X-Cache", "HIT")
			c.Header("X-Cache-Age", fmt.Sprintf("%.0f", age.Seconds()))

			c.Data(cached.StatusCode, cached.Headers.Get("Content-Type"), cached.Body)
			c.Abort()
			return
		}

		if rc.metrics != nil {
			rc.metrics.RecordCacheMiss(c.Request.Context(), "response")
		}

		rc.logger.Debug("Cache miss", zap.String("path", path))

		c.Header("X-Cache", "MISS")

		generation := rc.generation.Load()

		writer := &responseWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
		}
		c.Writer = writer

		c.Next()

		if status := writer.Status(); status >= 200 && status < 300 && generation == rc.generation.Load() {
			rc.cache.Set(cacheKey, CachedResponse{
				StatusCode: status,
				Headers:    cacheableHeaders(writer.Header()),
				Body:       bytes.Clone(writer.body.Bytes()),
				Timestamp:  time.Now(),
			}, config.TTL)
		}
	}
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// cacheableHeaders drops the headers that belong to a single request.
func cacheableHeaders(h http.Header) http.Header {
	out := h.Clone()

	for _, key := range []string{RequestIDHeader, "X-Cache", "X-Ratelimit-Limit", "X-Ratelimit-Remaining", "X-Ratelimit-Reset"} {
		out.Del(key)
	}

	return out
}

func (rc *ResponseCache) generateCacheKey(c *gin.Context, path string) string {
	keyParts := []string{path}

	if c.Request.URL.RawQuery != "" {
		keyParts = append(keyParts, c.Request.URL.RawQuery)
	}

	keyParts = append(keyParts, "ip_"+GetClientIP(c))

	hash := md5.Sum([]byte(strings.Join(keyParts, "|")))

	return fmt.Sprintf("cache:%s:%x", path, hash)
}

func (rc *ResponseCache) InvalidateAllCache() {
	rc.generation.Add(1)
	rc.cache.Flush()
	rc.logger.Debug("All cache invalidated")
}

func (rc *ResponseCache) SetConfig(path string, config ResponseCacheConfig) {
	rc.config[path] = config
}

func (rc *ResponseCache) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"active_entries": rc.cache.ItemCount(),
		"configs":        len(rc.config),
	}
}

// responseWriter tees the body so it can be cached after the handler runs.
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(data []byte) (int, error) {
	w.body.Write(data)
	return w.ResponseWriter.Write(data)
}

func (w *responseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
