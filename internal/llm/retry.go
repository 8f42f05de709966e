package llm

import (
	"context"
	"time"

	scherrors "scholar/internal/errors"
	"scholar/internal/logging"
)

// retryGenerator wraps a Generator with retry logic and a circuit breaker.
// Each member of a batch is retried on its own.
type retryGenerator struct {
	underlying     Generator
	retryConfig    scherrors.RetryConfig
	circuitBreaker *scherrors.CircuitBreaker
	logger         logging.Logger
}

var _ Generator = (*retryGenerator)(nil)

// NewRetryGenerator wraps a generator with retry and circuit breaker logic.
func NewRetryGenerator(gen Generator, retryConfig scherrors.RetryConfig, circuitBreaker *scherrors.CircuitBreaker) Generator {
	return &retryGenerator{
		underlying:     gen,
		retryConfig:    retryConfig,
		circuitBreaker: circuitBreaker,
		logger:         logging.NewComponentLogger("llm-retry"),
	}
}

func (g *retryGenerator) Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	start := time.Now()
	res, err := scherrors.RetryWithResult(ctx, g.retryConfig, func(ctx context.Context) (GenerateResult, error) {
		return scherrors.ExecuteFunc(g.circuitBreaker, ctx, func(ctx context.Context) (GenerateResult, error) {
			return g.underlying.Generate(ctx, req)
		})
	}, g.logger)
	if err != nil {
		g.logger.Warn("generation failed after retries (took %v): %v", time.Since(start), err)
		return GenerateResult{}, err
	}
	if elapsed := time.Since(start); elapsed > 30*time.Second {
		g.logger.Debug("generation succeeded after %v", elapsed)
	}
	return res, nil
}

func (g *retryGenerator) GenerateN(ctx context.Context, req GenerateRequest, n int) ([]GenerateResult, error) {
	return FanOut(ctx, g.Generate, req, n, g.logger)
}
