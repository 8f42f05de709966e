package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
}

func TestSaveAndGetEvaluation(t *testing.T) {
	s, err := New(t.TempDir(), WithClock(fixedClock))
	require.NoError(t, err)
	ctx := context.Background()

	saved, err := s.SaveEvaluation(ctx, Evaluation{
		ID:           "eval-1",
		ProposalText: "proposal",
		Review:       map[string]any{"Novelty": 8},
		ThinkingProcess: []Turn{
			{Role: "user", Content: "review this"},
			{Role: "assistant", Content: "done"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, fixedClock(), saved.Timestamp)

	got, err := s.GetEvaluation(ctx, "eval-1")
	require.NoError(t, err)
	assert.Equal(t, "proposal", got.ProposalText)
	assert.Len(t, got.ThinkingProcess, 2)
}

func TestGetEvaluationFallsBackToLog(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	writer, err := New(dir)
	require.NoError(t, err)
	_, err = writer.SaveEvaluation(ctx, Evaluation{ID: "eval-old", ProposalText: "v1", Review: map[string]any{}})
	require.NoError(t, err)
	_, err = writer.SaveEvaluation(ctx, Evaluation{ID: "eval-old", ProposalText: "v2", Review: map[string]any{}})
	require.NoError(t, err)

	reader, err := New(dir, WithCacheSize(1))
	require.NoError(t, err)
	got, err := reader.GetEvaluation(ctx, "eval-old")
	require.NoError(t, err)
	assert.Equal(t, "v2", got.ProposalText)

	_, err = reader.GetEvaluation(ctx, "eval-missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetEvaluationWithoutLog(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	_, err = s.GetEvaluation(context.Background(), "eval-x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetEvaluationSkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	content := "not json\n\n{\"evaluation_id\":\"eval-2\",\"proposal_text\":\"ok\",\"review_result\":{}}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, EvaluationsFile), []byte(content), 0o644))

	s, err := New(dir)
	require.NoError(t, err)
	got, err := s.GetEvaluation(context.Background(), "eval-2")
	require.NoError(t, err)
	assert.Equal(t, "ok", got.ProposalText)
}

func TestSaveFeedbackValidates(t *testing.T) {
	s, err := New(t.TempDir(), WithClock(fixedClock))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.SaveFeedback(ctx, Feedback{Feature: "summarize", Action: ActionUp})
	assert.Error(t, err)
	_, err = s.SaveFeedback(ctx, Feedback{Feature: FeatureEvaluate, Action: "sideways"})
	assert.Error(t, err)

	_, err = s.SaveFeedback(ctx, Feedback{ID: "fb-1", Feature: FeatureEvaluate, Action: ActionDown, EvaluationID: "eval-1", Details: "scores too high"})
	require.NoError(t, err)
	_, err = s.SaveFeedback(ctx, Feedback{ID: "fb-2", Feature: FeatureExtractText, Action: ActionUp, ExtractionID: "extract-1"})
	require.NoError(t, err)

	entries, err := s.ListFeedback(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "scores too high", entries[0].Details)
	assert.Equal(t, fixedClock(), entries[1].Timestamp)
}

func TestConcurrentAppendsKeepLinesIntact(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.SaveFeedback(context.Background(), Feedback{Feature: FeatureEvaluate, Action: ActionUp, Details: strings.Repeat("x", 4096)})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	entries, err := s.ListFeedback(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 20)
}

func TestNewRequiresDir(t *testing.T) {
	_, err := New("  ")
	assert.Error(t, err)
}
