package observability

import (
	"context"
	"io"
)

// Observability bundles the process-wide logging, metrics and tracing sinks.
type Observability struct {
	Logger  *Logger
	Metrics *MetricsCollector
	Tracer  *TracerProvider
	Review  *ReviewMetrics
	config  Config
}

// New initializes observability from config. Metrics and tracing failures are
// logged and degrade to no-op implementations.
func New(config Config, output io.Writer) *Observability {
	logger := NewLogger(LogConfig{
		Level:  config.Logging.Level,
		Format: config.Logging.Format,
		Output: output,
	})

	metrics, err := NewMetricsCollector(config.Metrics, nil)
	if err != nil {
		logger.Error("Failed to initialize metrics", "error", err)
		metrics = &MetricsCollector{}
	}

	tracer, err := NewTracerProvider(config.Tracing)
	if err != nil {
		logger.Error("Failed to initialize tracing", "error", err)
		tracer = NoopTracer()
	}

	var review *ReviewMetrics
	if config.Metrics.Enabled {
		review = NewReviewMetrics()
	}

	logger.Info("Observability initialized",
		"log_level", config.Logging.Level,
		"metrics_enabled", config.Metrics.Enabled,
		"tracing_enabled", config.Tracing.Enabled,
	)

	return &Observability{
		Logger:  logger,
		Metrics: metrics,
		Tracer:  tracer,
		Review:  review,
		config:  config,
	}
}

// Shutdown gracefully shuts down all observability components
func (o *Observability) Shutdown(ctx context.Context) error {
	if err := o.Metrics.Shutdown(ctx); err != nil {
		o.Logger.Error("Failed to shutdown metrics", "error", err)
	}
	if err := o.Tracer.Shutdown(ctx); err != nil {
		o.Logger.Error("Failed to shutdown tracing", "error", err)
	}
	return nil
}

// Config returns the current configuration
func (o *Observability) Config() Config {
	return o.config
}
