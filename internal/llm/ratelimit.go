package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// rateLimitedGenerator paces outbound calls through a shared token bucket.
type rateLimitedGenerator struct {
	base    Generator
	limiter *rate.Limiter
}

// WrapWithRateLimit wraps gen with a limiter when a positive limit is
// supplied. A burst less than 1 is coerced to 1. Callers wait for a token
// rather than failing, so an ensemble is spread out instead of rejected.
func WrapWithRateLimit(gen Generator, limit rate.Limit, burst int) Generator {
	if limit <= 0 {
		return gen
	}
	if burst < 1 {
		burst = 1
	}
	return &rateLimitedGenerator{base: gen, limiter: rate.NewLimiter(limit, burst)}
}

func (g *rateLimitedGenerator) Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return GenerateResult{}, fmt.Errorf("llm rate limit: %w", err)
	}
	return g.base.Generate(ctx, req)
}

func (g *rateLimitedGenerator) GenerateN(ctx context.Context, req GenerateRequest, n int) ([]GenerateResult, error) {
	return FanOut(ctx, g.Generate, req, n, nil)
}
