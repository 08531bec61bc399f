package shared

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	. "todolist/pkg/tracing"
)

// LoggingMiddleware logs one structured line per request.
func LoggingMiddleware(logger *LokiLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		AddHTTPAttributes(trace.SpanFromContext(c.Request.Context()), c.Request.Method, c.FullPath(), c.Writer.Status())

		if raw != "" {
			path = path + "?" + raw
		}

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("route", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", GetClientIP(c)),
			zap.String("user_agent", c.Request.UserAgent()),
			zap.String("request_id", GetRequestID(c)),
		}

		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			logger.ErrorWithTrace(c.Request.Context(), "HTTP Request", fields...)
		case status >= 400:
			logger.WarnWithTrace(c.Request.Context(), "HTTP Request", fields...)
		default:
			logger.InfoWithTrace(c.Request.Context(), "HTTP Request", fields...)
		}
	}
}
