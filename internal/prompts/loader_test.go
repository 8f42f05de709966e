package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedTemplatesPresent(t *testing.T) {
	loader, err := Default()
	require.NoError(t, err)

	for _, name := range []string{
		ReviewerSystem, MetaReviewerSystem, ExtendedForm, ShortForm, ReviewFormat,
		CallResponseSection, CallContext, Proposal, Reflection, FewShotIntro,
		IdeagenTurn, IdeagenSynthesis,
	} {
		_, err := loader.GetPrompt(name)
		assert.NoError(t, err, name)
	}
	_, err = loader.GetPrompt("missing")
	assert.Error(t, err)
}

func TestRenderPromptSinglePass(t *testing.T) {
	loader, err := NewPromptLoader()
	require.NoError(t, err)

	out, err := loader.RenderPrompt(Proposal, map[string]string{
		"call_context": "",
		"proposal":     "uses {{call_context}} literally",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "uses {{call_context}} literally")
	assert.False(t, strings.Contains(out, "{{proposal}}"))
}

func TestRenderReflectionRound(t *testing.T) {
	loader, err := Default()
	require.NoError(t, err)

	out, err := loader.RenderPrompt(Reflection, map[string]string{"current_round": "2", "num_reflections": "3"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Round 2/3."))
	assert.Contains(t, out, `"I am done"`)
}
