package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var noveltyOnly = []ScoreField{{Name: "Novelty", Min: 1, Max: 10}}

func TestMeanAggregatorRoundsHalfAwayFromZero(t *testing.T) {
	seed := Record{"Novelty": 1, "Summary": "keep me"}
	report := MeanAggregator{}.Aggregate([]Record{{"Novelty": 7}, {"Novelty": 8}}, noveltyOnly, seed)

	assert.Equal(t, 8, seed["Novelty"])
	assert.Equal(t, "keep me", seed["Summary"])
	assert.Equal(t, 2, report.Contributing("Novelty"))
	assert.Empty(t, report.Skipped)
}

func TestMeanAggregatorIgnoresInvalidValues(t *testing.T) {
	records := []Record{
		{"Novelty": 9},
		{"Novelty": 42},
		{"Novelty": "n/a"},
		{"Novelty": true},
		{"Novelty": "5"},
		{},
	}
	seed := Record{}
	report := MeanAggregator{}.Aggregate(records, noveltyOnly, seed)

	assert.Equal(t, 7, seed["Novelty"])
	assert.Equal(t, 2, report.Contributing("Novelty"))
	require.Len(t, report.Fields, 1)
	assert.InDelta(t, 7.0, report.Fields[0].Mean, 1e-9)
}

func TestMeanAggregatorSkipsFieldWithoutValidValues(t *testing.T) {
	seed := Record{"Novelty": "unscored"}
	report := MeanAggregator{}.Aggregate([]Record{{"Novelty": 0}, {"Novelty": "high"}}, noveltyOnly, seed)

	assert.Equal(t, "unscored", seed["Novelty"])
	assert.Equal(t, []string{"Novelty"}, report.Skipped)
	assert.Equal(t, 0, report.Contributing("Novelty"))
}

func TestMeanAggregatorStaysInRange(t *testing.T) {
	fields := SelectRubric(RubricShort, "").ScoreFields()
	records := []Record{
		{"Argumentative_Cohesion": 10, "Confidence": 5, "Overall_Quality": 1},
		{"Argumentative_Cohesion": 10, "Confidence": 1, "Overall_Quality": 1},
		{"Argumentative_Cohesion": 9, "Confidence": 4, "Overall_Quality": 2},
	}
	seed := Record{}
	MeanAggregator{}.Aggregate(records, fields, seed)

	for _, f := range fields {
		v, ok := seed.Number(f.Name)
		if !ok {
			continue
		}
		assert.True(t, f.Contains(v), "%s=%v outside [%v,%v]", f.Name, v, f.Min, f.Max)
	}
	assert.Equal(t, 10, seed["Argumentative_Cohesion"])
	assert.Equal(t, 3, seed["Confidence"])
	assert.Equal(t, 1, seed["Overall_Quality"])
}

func TestScoreFieldsIncludeCallResponseOnlyWhenActive(t *testing.T) {
	plain := SelectRubric(RubricExtended, "").FieldNames()
	withCall := SelectRubric(RubricExtended, "Fund climate models").FieldNames()
	short := SelectRubric(RubricShort, "Fund climate models").FieldNames()

	assert.NotContains(t, plain, FieldCallResponse)
	assert.Contains(t, withCall, FieldCallResponse)
	assert.NotContains(t, short, FieldCallResponse)
	assert.Equal(t, FieldConfidence, withCall[len(withCall)-1])
}
