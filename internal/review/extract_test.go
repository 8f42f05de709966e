package review

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractAfterMarker(t *testing.T) {
	text := "THOUGHT:\nSee ```json {\"Novelty\": 1}``` above.\n\nREVIEW JSON:\n```json\n{\"Novelty\": 7, \"Decision\": \"Accept\"}\n```\nTrailing notes."
	rec, err := Extract(text)
	require.NoError(t, err)

	v, ok := rec.Number("Novelty")
	require.True(t, ok)
	assert.Equal(t, 7.0, v)
	d, ok := rec.Decision()
	require.True(t, ok)
	assert.Equal(t, DecisionAccept, d)
}

func TestExtractWithoutMarkerUsesFirstBlock(t *testing.T) {
	text := "```json\n{\"Novelty\": 3}\n```\n```json\n{\"Novelty\": 9}\n```"
	rec, err := Extract(text)
	require.NoError(t, err)
	v, _ := rec.Number("Novelty")
	assert.Equal(t, 3.0, v)
}

func TestExtractFailures(t *testing.T) {
	cases := map[string]string{
		"no block":     "REVIEW JSON: nothing here",
		"unterminated": "REVIEW JSON:\n```json\n{\"Novelty\": 7}",
		"empty":        "REVIEW JSON:\n```json\n   \n```",
		"invalid":      "REVIEW JSON:\n```json\n{\"Novelty\": 7,,}\n```",
		"not object":   "REVIEW JSON:\n```json\n[1, 2]\n```",
		"null":         "REVIEW JSON:\n```json\nnull\n```",
		"empty input":  "",
		"trailing":     "REVIEW JSON:\n```json\n{\"Novelty\": 7} trailing prose\n```",
		"stray brace":  "REVIEW JSON:\n```json\n{\"Novelty\": 7}, \"Decision\": \"Accept\"}\n```",
		"two objects":  "REVIEW JSON:\n```json\n{\"a\":1}{\"b\":2}\n```",
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			rec, err := Extract(text)
			assert.Nil(t, rec)
			var extractErr *ExtractionError
			require.True(t, errors.As(err, &extractErr), "got %v", err)
		})
	}
}

func TestExtractMissingBlockCarriesSentinel(t *testing.T) {
	_, err := Extract("just prose")
	assert.ErrorIs(t, err, ErrNoStructuredBlock)
}

func TestExtractRoundTripsRenderedRecord(t *testing.T) {
	original := Record{
		"Summary":   "A proposal about <tags> & symbols.",
		"Strengths": []any{"clear", "bold"},
		"Novelty":   8,
		"Decision":  "Reject",
	}
	first, err := Extract(aggregationTurn(2, original))
	require.NoError(t, err)
	second, err := Extract(aggregationTurn(2, first))
	require.NoError(t, err)

	assert.Equal(t, first.JSON(), second.JSON())
	assert.Equal(t, "A proposal about <tags> & symbols.", second.String("Summary"))
	assert.Equal(t, []string{"clear", "bold"}, second.Strings("Strengths"))
}
