package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholar/internal/ideagen"
	jsonx "scholar/internal/shared/json"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--provider", "mock", "--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestReviewCommandJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proposal.md")
	require.NoError(t, os.WriteFile(path, []byte("Title: Sparse features\n\nWe study sparse features."), 0o644))

	out, err := execute(t, "", "review", path, "--json", "--ensemble", "2", "--reflections", "2")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, jsonx.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Reject", got["decision"])
	assert.EqualValues(t, 2, got["reviewers"])
	assert.Equal(t, "converged", got["reflection"])
	review, ok := got["review"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 6, review["Overall_Quality"])
	assert.NotContains(t, got, "thinking_process")
}

func TestReviewCommandStdinPretty(t *testing.T) {
	out, err := execute(t, "A proposal read from stdin.", "review", "-", "--ensemble", "1", "--rubric", "short")
	require.NoError(t, err)
	assert.Contains(t, out, "Decision:")
	assert.Contains(t, out, "Scientific_Rigor")
	assert.NotContains(t, out, "Novelty")
}

func TestReviewCommandRejectsEmptyInput(t *testing.T) {
	_, err := execute(t, "   ", "review", "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is empty")
}

func TestReviewCommandRejectsBadRubric(t *testing.T) {
	_, err := execute(t, "text", "review", "-", "--rubric", "tiny")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "review.rubric")
}

func TestIdeagenCommand(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "sim.json")
	out, err := execute(t, "", "ideagen", "--topic", "Protein Folding", "--max-turns", "3", "--seed", "7", "--out", outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Principal Investigator")
	assert.Contains(t, out, "Mock idea")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var res ideagen.Result
	require.NoError(t, jsonx.Unmarshal(data, &res))
	assert.Equal(t, "Protein Folding", res.Topic)
	assert.Len(t, res.Messages, 3)
	require.NotNil(t, res.Idea)
	assert.Equal(t, "Mock idea", res.Idea.Title)
}

func TestIdeagenCommandReviewsIdea(t *testing.T) {
	out, err := execute(t, "", "ideagen", "--topic", "Caching", "--max-turns", "2", "--quiet", "--review")
	require.NoError(t, err)
	assert.NotContains(t, out, "[turn 1]")
	assert.Contains(t, out, "Mock idea")
	assert.Contains(t, out, "Decision:")
}

func TestIdeagenCommandRequiresTopic(t *testing.T) {
	_, err := execute(t, "", "ideagen")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--topic")
}

func TestIdeagenCommandUnknownOrder(t *testing.T) {
	_, err := execute(t, "", "ideagen", "--topic", "x", "--order", "anarchic")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown order")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "scholar "))
}

func TestWrap(t *testing.T) {
	got := wrap(strings.Repeat("word ", 10), 20)
	for _, line := range strings.Split(got, "\n") {
		assert.LessOrEqual(t, len(line), 20)
	}
	assert.Equal(t, "short", wrap("short", 5))
}
