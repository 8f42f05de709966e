// Package review turns several noisy model reviews of a research proposal
// into one scored verdict: ensemble review, meta-review, mean-of-valid-scores
// aggregation, and a bounded reflection loop.
package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"scholar/internal/llm"
	"scholar/internal/logging"
	"scholar/internal/observability"
	"scholar/internal/prompts"
	tokenutil "scholar/internal/shared/token"
)

// Request is one immutable review request.
type Request struct {
	Proposal        string
	CallForProposal string
	Rubric          RubricKind
	Polarity        Polarity
	NumFewShot      int
	EnsembleSize    int
	NumReflections  int
	// Temperature applies to the single-review path, the meta-review, and
	// reflection rounds.
	Temperature float64
	// EnsembleTemperature applies to ensemble members, which are sampled
	// hotter to encourage diversity.
	EnsembleTemperature float64
	ReturnHistory       bool
}

// Result is the pipeline output.
type Result struct {
	Record Record
	// Transcript is nil unless the request asked for history.
	Transcript llm.Transcript
	Rubric     Rubric
	// Ensemble holds the parsed member records; empty on the single path.
	Ensemble         []Record
	Aggregation      *AggregationReport
	MetaReviewFailed bool
	Reflection       ReflectionState
	ReflectionRounds int
	Truncated        bool
}

// Reviewer runs the review pipeline. It holds no per-request state and is
// safe for concurrent use.
type Reviewer struct {
	gen          llm.Generator
	prompts      promptBuilder
	metaReviewer MetaReviewer
	aggregator   Aggregator
	logger       logging.Logger
	metrics      *observability.ReviewMetrics
	tracer       *observability.TracerProvider
	timeout      time.Duration
	maxTokens    int
}

// Option configures a Reviewer.
type Option func(*Reviewer)

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(r *Reviewer) { r.logger = logging.OrNop(logger) }
}

// WithMetrics records pipeline outcomes.
func WithMetrics(m *observability.ReviewMetrics) Option {
	return func(r *Reviewer) { r.metrics = m }
}

// WithTracer opens a span per phase.
func WithTracer(tp *observability.TracerProvider) Option {
	return func(r *Reviewer) { r.tracer = tp }
}

// WithTimeout bounds a whole review. Zero disables the deadline.
func WithTimeout(d time.Duration) Option {
	return func(r *Reviewer) { r.timeout = d }
}

// WithMaxProposalTokens truncates longer proposals before prompting.
func WithMaxProposalTokens(n int) Option {
	return func(r *Reviewer) { r.maxTokens = n }
}

// WithMetaReviewer replaces the default generator-backed synthesizer.
func WithMetaReviewer(m MetaReviewer) Option {
	return func(r *Reviewer) { r.metaReviewer = m }
}

// WithAggregator replaces the default mean aggregator.
func WithAggregator(a Aggregator) Option {
	return func(r *Reviewer) { r.aggregator = a }
}

// NewReviewer builds a reviewer around gen.
func NewReviewer(gen llm.Generator, opts ...Option) (*Reviewer, error) {
	if gen == nil {
		return nil, errors.New("review: generator is required")
	}
	loader, err := prompts.Default()
	if err != nil {
		return nil, err
	}
	r := &Reviewer{
		gen:     gen,
		prompts: promptBuilder{loader: loader},
		logger:  logging.NewComponentLogger("review"),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.metaReviewer == nil {
		r.metaReviewer = &LLMMetaReviewer{gen: gen, prompts: r.prompts}
	}
	if r.aggregator == nil {
		r.aggregator = MeanAggregator{Logger: r.logger}
	}
	return r, nil
}

// Review runs the pipeline for req.
func (r *Reviewer) Review(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.Proposal) == "" {
		return nil, errors.New("review: proposal text is empty")
	}
	if req.EnsembleSize < 1 {
		req.EnsembleSize = 1
	}
	if req.NumReflections < 1 {
		req.NumReflections = 1
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	ctx, span := r.tracer.StartSpan(ctx, observability.SpanReviewRun,
		attribute.Int(observability.AttrEnsembleSize, req.EnsembleSize))
	defer span.End()
	logger := logging.FromContext(ctx, r.logger)

	res, err := r.run(ctx, req, logger)
	if err != nil {
		outcome := "failed"
		if phase, ok := FailedPhase(err); ok {
			outcome += "_" + string(phase)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.metrics.ObserveReview(outcome)
		logger.Error("review failed: %v", err)
		return nil, err
	}
	r.metrics.ObserveReview("ok")
	if !req.ReturnHistory {
		res.Transcript = nil
	}
	return res, nil
}

func (r *Reviewer) run(ctx context.Context, req Request, logger logging.Logger) (*Result, error) {
	rubric := SelectRubric(req.Rubric, req.CallForProposal)
	res := &Result{Rubric: rubric}

	proposal := req.Proposal
	if r.maxTokens > 0 {
		proposal, res.Truncated = tokenutil.TruncateToTokens(proposal, r.maxTokens)
		if res.Truncated {
			logger.Warn("proposal truncated to %d tokens", r.maxTokens)
		}
	}

	system, err := r.prompts.reviewerSystem(req.Polarity)
	if err != nil {
		return nil, err
	}
	prompt, err := r.prompts.reviewPrompt(rubric, proposal, req.CallForProposal, req.NumFewShot)
	if err != nil {
		return nil, err
	}
	base := llm.GenerateRequest{Prompt: prompt, System: system}

	var (
		record     Record
		transcript llm.Transcript
	)
	if req.EnsembleSize > 1 {
		record, transcript, err = r.ensemble(ctx, req, rubric, base, res, logger)
		if err != nil {
			return nil, err
		}
	} else {
		base.Temperature = req.Temperature
		out, err := r.gen.Generate(ctx, base)
		if err != nil {
			return nil, phaseError(PhaseSingle, err)
		}
		record, err = Extract(out.Text)
		if err != nil {
			return nil, phaseError(PhaseSingle, err)
		}
		transcript = out.Transcript
	}

	rctx, rspan := r.tracer.StartSpan(ctx, observability.SpanReviewReflection)
	outcome, err := reflector{gen: r.gen, prompts: r.prompts, logger: logger}.
		run(rctx, record, transcript, req.NumReflections, system, req.Temperature)
	rspan.SetAttributes(
		attribute.Int(observability.AttrRounds, outcome.Rounds),
		attribute.String(observability.AttrStopReason, string(outcome.State)),
	)
	rspan.End()
	if err != nil {
		return nil, phaseError(PhaseReflection, err)
	}
	r.metrics.ObserveReflection(outcome.Rounds, string(outcome.State))

	res.Record = outcome.Record
	res.Transcript = outcome.Transcript
	res.Reflection = outcome.State
	res.ReflectionRounds = outcome.Rounds
	return res, nil
}

// ensemble runs steps 2 to 5: fan out, extract, meta-review with fallback,
// aggregate, and seed the reflection transcript.
func (r *Reviewer) ensemble(ctx context.Context, req Request, rubric Rubric, base llm.GenerateRequest, res *Result, logger logging.Logger) (Record, llm.Transcript, error) {
	ectx, span := r.tracer.StartSpan(ctx, observability.SpanReviewEnsemble,
		attribute.Int(observability.AttrEnsembleSize, req.EnsembleSize))
	defer span.End()

	base.Temperature = req.EnsembleTemperature
	outputs, genErr := r.gen.GenerateN(ectx, base, req.EnsembleSize)
	if err := ctx.Err(); err != nil {
		return nil, nil, phaseError(PhaseEnsemble, err)
	}

	var (
		records     []Record
		transcripts []llm.Transcript
		lastErr     = genErr
	)
	for i, out := range outputs {
		rec, err := Extract(out.Text)
		if err != nil {
			logger.Warn("ensemble review %d/%d dropped: %v", i+1, len(outputs), err)
			lastErr = err
			continue
		}
		records = append(records, rec)
		transcripts = append(transcripts, out.Transcript)
	}

	dropped := req.EnsembleSize - len(records)
	r.metrics.ObserveDroppedMembers(dropped)
	span.SetAttributes(attribute.Int(observability.AttrValidMembers, len(records)))
	if dropped > 0 {
		logger.Warn("%d of %d ensemble reviews dropped", dropped, req.EnsembleSize)
	}
	if len(records) == 0 {
		return nil, nil, phaseError(PhaseEnsemble, &EmptyEnsembleError{Requested: req.EnsembleSize, Cause: lastErr})
	}
	res.Ensemble = records

	mctx, mspan := r.tracer.StartSpan(ectx, observability.SpanReviewMeta)
	meta, err := r.metaReviewer.MetaReview(mctx, records, rubric, req.Temperature)
	mspan.End()

	var working Record
	if err != nil {
		logger.Warn("%v; falling back to first ensemble review", err)
		r.metrics.ObserveMetaReviewFallback()
		res.MetaReviewFailed = true
		working = records[0].Clone()
	} else {
		working = meta.Clone()
	}

	report := r.aggregator.Aggregate(records, rubric.ScoreFields(), working)
	for _, field := range report.Skipped {
		r.metrics.ObserveAggregationSkip(field)
	}
	res.Aggregation = &report

	transcript := transcripts[0].WithoutLast().Append(llm.Message{
		Role:    llm.RoleAssistant,
		Content: aggregationTurn(len(records), working),
	})
	logger.Debug("ensemble aggregated from %d reviews", len(records))
	return working, transcript, nil
}

// String renders a short human summary, used by the CLI.
func (r *Result) String() string {
	decision, _ := r.Record.Decision()
	overall, _ := r.Record.Number(FieldOverallQuality)
	return fmt.Sprintf("decision=%s overall=%.0f reflection=%s rounds=%d", decision, overall, r.Reflection, r.ReflectionRounds)
}
