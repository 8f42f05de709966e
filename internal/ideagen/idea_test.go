package ideagen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIdea(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		title string
	}{
		{
			name:  "marker and fence",
			text:  "THOUGHT:\nchose the second idea\n\nIDEA JSON:\n```json\n{\"Title\": \"Sparse features\", \"Problem\": \"p\", \"Motivation\": \"m\", \"Method\": \"x\", \"Experiment_Plan\": \"e\"}\n```\n",
			title: "Sparse features",
		},
		{
			name:  "bare object",
			text:  `Here it is: {"Title": "Bare", "Problem": "p"} thanks`,
			title: "Bare",
		},
		{
			name:  "trailing comma repaired",
			text:  "IDEA JSON:\n```json\n{\"Title\": \"Trailing\", \"Method\": \"m\",}\n```",
			title: "Trailing",
		},
		{
			name:  "single quotes repaired",
			text:  "IDEA JSON: {'Title': 'Quoted', 'Problem': 'p'}",
			title: "Quoted",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idea, err := ParseIdea(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.title, idea.Title)
		})
	}
}

func TestParseIdeaFields(t *testing.T) {
	idea, err := ParseIdea(`{"Title": "T", "Problem": "P", "Motivation": "M", "Method": "X", "Experiment_Plan": "E"}`)
	require.NoError(t, err)
	assert.Equal(t, Idea{Title: "T", Problem: "P", Motivation: "M", Method: "X", ExperimentPlan: "E"}, idea)

	proposal := idea.Proposal()
	assert.Contains(t, proposal, "Title: T")
	assert.Contains(t, proposal, "Step-by-Step Experiment Plan: E")
}

func TestParseIdeaMissing(t *testing.T) {
	_, err := ParseIdea("we could not agree on anything")
	assert.ErrorIs(t, err, ErrNoIdea)

	_, err = ParseIdea(`IDEA JSON: {"Problem": "no title"}`)
	assert.ErrorIs(t, err, ErrNoIdea)
}
