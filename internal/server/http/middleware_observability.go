package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"scholar/internal/logging"
	"scholar/internal/observability"
)

// observabilityMiddleware opens a span per request and logs its latency.
func observabilityMiddleware(obs *observability.Observability, logger logging.Logger) gin.HandlerFunc {
	logger = logging.OrNop(logger)
	var tracer *observability.TracerProvider
	if obs != nil {
		tracer = obs.Tracer
	}
	return func(c *gin.Context) {
		start := time.Now()
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		ctx, span := tracer.StartSpan(c.Request.Context(), observability.SpanHTTPServer,
			attribute.String("http.route", route),
			attribute.String("http.method", c.Request.Method),
		)
		c.Request = c.Request.WithContext(ctx)
		defer span.End()

		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= 500 {
			span.SetStatus(codes.Error, c.Errors.String())
		}
		logger.Info("route=%s method=%s status=%d latency_ms=%.2f bytes=%d",
			route, c.Request.Method, status,
			float64(time.Since(start).Microseconds())/1000.0, c.Writer.Size())
	}
}
