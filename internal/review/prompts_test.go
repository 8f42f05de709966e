package review

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholar/internal/prompts"
)

func testBuilder(t *testing.T) promptBuilder {
	t.Helper()
	loader, err := prompts.Default()
	require.NoError(t, err)
	return promptBuilder{loader: loader}
}

func TestReviewerSystemCarriesPolarity(t *testing.T) {
	b := testBuilder(t)
	strict, err := b.reviewerSystem(PolarityStrict)
	require.NoError(t, err)
	lenient, err := b.reviewerSystem(PolarityLenient)
	require.NoError(t, err)

	assert.Contains(t, strict, "low scores and reject")
	assert.Contains(t, lenient, "high scores and accept")
	assert.NotContains(t, strict, "{{")
}

func TestReviewPromptListsRubricFields(t *testing.T) {
	b := testBuilder(t)
	for _, rubric := range []Rubric{SelectRubric(RubricShort, ""), SelectRubric(RubricExtended, "cfp")} {
		prompt, err := b.reviewPrompt(rubric, "my proposal", "cfp", 0)
		require.NoError(t, err)
		for _, name := range rubric.FieldNames() {
			assert.Contains(t, prompt, `"`+name+`"`, "rubric %s", rubric.Kind)
		}
		assert.Contains(t, prompt, "my proposal")
		assert.NotContains(t, prompt, "{{")
	}
}

func TestReviewPromptFewShotCapped(t *testing.T) {
	all, err := Exemplars()
	require.NoError(t, err)
	require.NotEmpty(t, all)

	b := testBuilder(t)
	rubric := SelectRubric(RubricExtended, "")
	none, err := b.reviewPrompt(rubric, "p", "", 0)
	require.NoError(t, err)
	many, err := b.reviewPrompt(rubric, "p", "", 99)
	require.NoError(t, err)

	assert.NotContains(t, none, all[0].Proposal)
	for _, ex := range all {
		assert.Contains(t, many, ex.Proposal)
	}
}

func TestParsePolarityAndRubric(t *testing.T) {
	p, err := ParsePolarity(" Lenient ")
	require.NoError(t, err)
	assert.Equal(t, PolarityLenient, p)
	_, err = ParsePolarity("harsh")
	assert.Error(t, err)

	k, err := ParseRubricKind("")
	require.NoError(t, err)
	assert.Equal(t, RubricExtended, k)
	_, err = ParseRubricKind("medium")
	assert.Error(t, err)
}

func TestReflectionPromptNumbersRounds(t *testing.T) {
	out, err := testBuilder(t).reflectionPrompt(2, 5)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Round 2/5."))
}
