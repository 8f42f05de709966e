package llm

import (
	"fmt"
	"strings"

	"golang.org/x/time/rate"

	"scholar/internal/config"
	scherrors "scholar/internal/errors"
	"scholar/internal/observability"
)

// New builds the configured generator stack. From the inside out: provider
// client, rate limiting, instrumentation, then retry with a circuit breaker,
// so every attempt takes a token and is recorded.
func New(cfg config.LLMConfig, obs *observability.Observability) (Generator, error) {
	var (
		base  Generator
		model = cfg.Model
	)
	switch strings.ToLower(cfg.Provider) {
	case config.ProviderMock, "":
		return NewMockGenerator(), nil
	case config.ProviderOpenAI, config.ProviderDeepSeek:
		client, err := NewOpenAIClient(OpenAIConfig{
			BaseURL:   cfg.BaseURL,
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			Timeout:   cfg.Timeout,
			MaxTokens: cfg.MaxTokens,
		})
		if err != nil {
			return nil, fmt.Errorf("%s client: %w", cfg.Provider, err)
		}
		base = client
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}

	return Wrap(base, model, cfg, obs), nil
}

// Wrap applies the standard middleware to an existing client.
func Wrap(base Generator, model string, cfg config.LLMConfig, obs *observability.Observability) Generator {
	var (
		metrics *observability.MetricsCollector
		tracer  *observability.TracerProvider
	)
	if obs != nil {
		metrics, tracer = obs.Metrics, obs.Tracer
	}
	gen := WrapWithRateLimit(base, rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	gen = WrapWithObservability(gen, model, metrics, tracer)

	retryCfg := scherrors.DefaultRetryConfig()
	if cfg.RetryMaxAttempts > 0 {
		retryCfg.MaxAttempts = cfg.RetryMaxAttempts
	}
	if cfg.RetryBaseDelay > 0 {
		retryCfg.BaseDelay = cfg.RetryBaseDelay
	}
	if cfg.RetryMaxDelay > 0 {
		retryCfg.MaxDelay = cfg.RetryMaxDelay
	}
	breakerCfg := scherrors.DefaultCircuitBreakerConfig()
	if cfg.BreakerFailureThreshold > 0 {
		breakerCfg.FailureThreshold = cfg.BreakerFailureThreshold
	}
	if cfg.BreakerTimeout > 0 {
		breakerCfg.Timeout = cfg.BreakerTimeout
	}
	return NewRetryGenerator(gen, retryCfg, scherrors.NewCircuitBreaker(model, breakerCfg))
}
