package review

import (
	"context"
	"errors"

	"scholar/internal/llm"
)

// MetaReviewer synthesizes one consensus record from ensemble records.
type MetaReviewer interface {
	MetaReview(ctx context.Context, records []Record, rubric Rubric, temperature float64) (Record, error)
}

// errEmptyEnsemble is returned when there is nothing to synthesize.
var errEmptyEnsemble = errors.New("no ensemble records")

// LLMMetaReviewer asks the generator for one meta-review under a
// meta-reviewer system instruction naming the reviewer count.
type LLMMetaReviewer struct {
	gen     llm.Generator
	prompts promptBuilder
}

var _ MetaReviewer = (*LLMMetaReviewer)(nil)

// MetaReview issues exactly one generation, or none for an empty input.
// Every failure is a *MetaReviewError.
func (m *LLMMetaReviewer) MetaReview(ctx context.Context, records []Record, rubric Rubric, temperature float64) (Record, error) {
	if len(records) == 0 {
		return nil, &MetaReviewError{Err: errEmptyEnsemble}
	}

	system, err := m.prompts.metaReviewerSystem(len(records))
	if err != nil {
		return nil, &MetaReviewError{Err: err}
	}
	prompt, err := m.prompts.metaReviewPrompt(rubric, records)
	if err != nil {
		return nil, &MetaReviewError{Err: err}
	}

	res, err := m.gen.Generate(ctx, llm.GenerateRequest{
		Prompt:      prompt,
		System:      system,
		Temperature: temperature,
	})
	if err != nil {
		return nil, &MetaReviewError{Err: err}
	}

	rec, err := Extract(res.Text)
	if err != nil {
		return nil, &MetaReviewError{Err: err}
	}
	return rec, nil
}
