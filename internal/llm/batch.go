package llm

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"scholar/internal/logging"
)

// GenerateFunc produces a single completion.
type GenerateFunc func(ctx context.Context, req GenerateRequest) (GenerateResult, error)

// FanOut issues n independent calls to generate concurrently and returns the
// successful results in slot order. An error is returned only when every call
// failed or the context ended.
func FanOut(ctx context.Context, generate GenerateFunc, req GenerateRequest, n int, logger logging.Logger) ([]GenerateResult, error) {
	if n <= 0 {
		return nil, nil
	}
	logger = logging.OrNop(logger)

	slots := make([]*GenerateResult, n)
	errs := make([]error, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(n)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			res, err := generate(gctx, req)
			if err != nil {
				errs[i] = err
				logger.Warn("batch member %d/%d failed: %v", i+1, n, err)
				return nil
			}
			slots[i] = &res
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([]GenerateResult, 0, n)
	for _, slot := range slots {
		if slot != nil {
			results = append(results, *slot)
		}
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("all %d generations failed: %w", n, errors.Join(errs...))
	}
	return results, nil
}
