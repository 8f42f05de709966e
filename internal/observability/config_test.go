package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "info", config.Logging.Level)
	assert.Equal(t, "text", config.Logging.Format)
	assert.True(t, config.Metrics.Enabled)
	assert.False(t, config.Tracing.Enabled)
	assert.Equal(t, "otlp", config.Tracing.Exporter)
	assert.Equal(t, 1.0, config.Tracing.SampleRate)
}

func TestMergeOverridesNonZeroValues(t *testing.T) {
	merged := DefaultConfig().Merge(Config{
		Logging: LoggingConfig{Level: "debug"},
		Metrics: MetricsConfig{Enabled: true, PrometheusPort: 9100},
		Tracing: TracingConfig{Enabled: true, Exporter: "zipkin", SampleRate: 0.5},
	})

	assert.Equal(t, "debug", merged.Logging.Level)
	assert.Equal(t, "text", merged.Logging.Format)
	assert.Equal(t, 9100, merged.Metrics.PrometheusPort)
	assert.True(t, merged.Tracing.Enabled)
	assert.Equal(t, "zipkin", merged.Tracing.Exporter)
	assert.Equal(t, 0.5, merged.Tracing.SampleRate)
	assert.Equal(t, "scholar", merged.Tracing.ServiceName)
}

func TestMergeIgnoresOutOfRangeSampleRate(t *testing.T) {
	merged := DefaultConfig().Merge(Config{Tracing: TracingConfig{SampleRate: 3}})
	assert.Equal(t, 1.0, merged.Tracing.SampleRate)
	assert.False(t, merged.Metrics.Enabled)
}

func TestSanitizeAPIKey(t *testing.T) {
	assert.Equal(t, "***", SanitizeAPIKey("short"))
	assert.Equal(t, "sk-abcde...wxyz", SanitizeAPIKey("sk-abcdefghijklmnopqrstuvwxyz"))
}
