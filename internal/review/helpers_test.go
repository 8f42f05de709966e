package review

import (
	"context"
	"fmt"
	"sync/atomic"

	"scholar/internal/llm"
	jsonx "scholar/internal/shared/json"
)

func reviewText(fields map[string]any) string {
	data, err := jsonx.Marshal(fields)
	if err != nil {
		panic(err)
	}
	return fmt.Sprintf("THOUGHT:\nReading the proposal.\n\nREVIEW JSON:\n```json\n%s\n```\n", data)
}

func okReply(fields map[string]any) llm.ScriptedReply {
	return llm.ScriptedReply{Text: reviewText(fields)}
}

func badReply() llm.ScriptedReply {
	return llm.ScriptedReply{Text: "I could not produce a review."}
}

type countingAggregator struct {
	inner Aggregator
	calls atomic.Int32
}

func (c *countingAggregator) Aggregate(records []Record, fields []ScoreField, seed Record) AggregationReport {
	c.calls.Add(1)
	return c.inner.Aggregate(records, fields, seed)
}

type countingMetaReviewer struct {
	inner MetaReviewer
	calls atomic.Int32
}

func (c *countingMetaReviewer) MetaReview(ctx context.Context, records []Record, rubric Rubric, temperature float64) (Record, error) {
	c.calls.Add(1)
	return c.inner.MetaReview(ctx, records, rubric, temperature)
}

type failingMetaReviewer struct{}

func (failingMetaReviewer) MetaReview(context.Context, []Record, Rubric, float64) (Record, error) {
	return nil, &MetaReviewError{Err: fmt.Errorf("upstream unavailable")}
}
