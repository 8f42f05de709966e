package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"scholar/internal/config"
	scherrors "scholar/internal/errors"
)

func fastRetry() scherrors.RetryConfig {
	return scherrors.RetryConfig{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}
}

func TestRetryGeneratorRetriesTransient(t *testing.T) {
	script := NewScriptedGenerator(
		ScriptedReply{Err: scherrors.NewTransientError(errors.New("503"), "")},
		ScriptedReply{Text: "ok"},
	)
	gen := NewRetryGenerator(script, fastRetry(), nil)

	res, err := gen.Generate(context.Background(), GenerateRequest{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Text)
	assert.Equal(t, 2, script.CallCount())
}

func TestRetryGeneratorDoesNotRetryPermanent(t *testing.T) {
	script := NewScriptedGenerator(ScriptedReply{Err: scherrors.NewPermanentError(errors.New("400"), "")})
	gen := NewRetryGenerator(script, fastRetry(), nil)

	_, err := gen.Generate(context.Background(), GenerateRequest{Prompt: "p"})
	require.Error(t, err)
	assert.Equal(t, 1, script.CallCount())
}

func TestFanOutKeepsSlotOrderAndDropsFailures(t *testing.T) {
	gen := func(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
		return GenerateResult{}, errors.New("boom")
	}
	_, err := FanOut(context.Background(), gen, GenerateRequest{}, 3, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 3 generations failed")

	results, err := FanOut(context.Background(), func(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
		return GenerateResult{Text: "x"}, nil
	}, GenerateRequest{}, 4, nil)
	require.NoError(t, err)
	assert.Len(t, results, 4)

	results, err = FanOut(context.Background(), gen, GenerateRequest{}, 0, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFanOutReportsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := FanOut(ctx, func(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
		return GenerateResult{}, ctx.Err()
	}, GenerateRequest{}, 2, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRateLimitWaitsForToken(t *testing.T) {
	script := NewScriptedGenerator()
	script.Fallback = func(GenerateRequest) (string, error) { return "ok", nil }
	gen := WrapWithRateLimit(script, rate.Limit(1000), 1)

	results, err := gen.GenerateN(context.Background(), GenerateRequest{Prompt: "p"}, 3)
	require.NoError(t, err)
	assert.Len(t, results, 3)

	assert.Same(t, Generator(script), WrapWithRateLimit(script, 0, 1))
}

func TestRateLimitHonoursContext(t *testing.T) {
	gen := WrapWithRateLimit(NewScriptedGenerator(), rate.Limit(0.001), 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := gen.Generate(ctx, GenerateRequest{})
	require.Error(t, err)
}

func TestTranscriptAppendDoesNotAlias(t *testing.T) {
	base := make(Transcript, 1, 4)
	base[0] = Message{Role: RoleUser, Content: "a"}
	left := base.Append(Message{Role: RoleAssistant, Content: "b"})
	right := base.Append(Message{Role: RoleAssistant, Content: "c"})
	assert.Equal(t, "b", left[1].Content)
	assert.Equal(t, "c", right[1].Content)
	assert.Len(t, left.WithoutLast(), 1)
	assert.Empty(t, Transcript{}.WithoutLast())
}

func TestMockGeneratorProducesReviewBlock(t *testing.T) {
	gen, err := New(config.LLMConfig{Provider: config.ProviderMock}, nil)
	require.NoError(t, err)

	res, err := gen.Generate(context.Background(), GenerateRequest{Prompt: "... REVIEW JSON ..."})
	require.NoError(t, err)
	assert.Contains(t, res.Text, "```json")
	assert.NotContains(t, res.Text, "I am done")

	res, err = gen.Generate(context.Background(), GenerateRequest{Prompt: "REVIEW JSON", History: res.Transcript})
	require.NoError(t, err)
	assert.Contains(t, res.Text, "I am done")
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	_, err := New(config.LLMConfig{Provider: "carrier-pigeon"}, nil)
	require.Error(t, err)
}
