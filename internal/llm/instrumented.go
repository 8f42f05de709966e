package llm

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"scholar/internal/observability"
)

// instrumentedGenerator records latency, token counts, and a span per call.
type instrumentedGenerator struct {
	base    Generator
	model   string
	metrics *observability.MetricsCollector
	tracer  *observability.TracerProvider
}

// WrapWithObservability records every call on the given collector and tracer.
// Nil collaborators are tolerated.
func WrapWithObservability(gen Generator, model string, metrics *observability.MetricsCollector, tracer *observability.TracerProvider) Generator {
	return &instrumentedGenerator{base: gen, model: model, metrics: metrics, tracer: tracer}
}

func (g *instrumentedGenerator) Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	ctx, span := g.tracer.StartSpan(ctx, observability.SpanLLMGenerate,
		attribute.String(observability.AttrModel, g.model))
	defer span.End()

	start := time.Now()
	res, err := g.base.Generate(ctx, req)
	status := "success"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	g.metrics.RecordLLMRequest(ctx, g.model, status, time.Since(start), res.Usage.PromptTokens, res.Usage.CompletionTokens)
	return res, err
}

func (g *instrumentedGenerator) GenerateN(ctx context.Context, req GenerateRequest, n int) ([]GenerateResult, error) {
	return FanOut(ctx, g.Generate, req, n, nil)
}
