package llm

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scherrors "scholar/internal/errors"
	jsonx "scholar/internal/shared/json"
)

func TestOpenAIClientGenerate(t *testing.T) {
	var captured chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, jsonx.Unmarshal(body, &captured))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"hello"}}],"usage":{"prompt_tokens":11,"completion_tokens":3}}`))
	}))
	defer server.Close()

	client, err := NewOpenAIClient(OpenAIConfig{BaseURL: server.URL + "/v1/", APIKey: "secret", Model: "m1"})
	require.NoError(t, err)

	history := Transcript{{Role: RoleUser, Content: "earlier"}, {Role: RoleAssistant, Content: "reply"}}
	res, err := client.Generate(context.Background(), GenerateRequest{
		Prompt:      "now",
		System:      "be strict",
		Temperature: 0.3,
		History:     history,
	})
	require.NoError(t, err)

	assert.Equal(t, "hello", res.Text)
	assert.Equal(t, 11, res.Usage.PromptTokens)
	assert.Equal(t, "m1", captured.Model)
	assert.Equal(t, 0.3, captured.Temperature)
	require.Len(t, captured.Messages, 4)
	assert.Equal(t, RoleSystem, captured.Messages[0].Role)
	assert.Equal(t, "now", captured.Messages[3].Content)

	require.Len(t, res.Transcript, 4)
	assert.Equal(t, Message{Role: RoleAssistant, Content: "hello"}, res.Transcript[3])
	assert.Len(t, history, 2, "request history must not be mutated")
}

func TestOpenAIClientClassifiesStatus(t *testing.T) {
	status := int32(http.StatusTooManyRequests)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(int(atomic.LoadInt32(&status)))
		_, _ = w.Write([]byte(`{"error":{"message":"slow down"}}`))
	}))
	defer server.Close()

	client, err := NewOpenAIClient(OpenAIConfig{BaseURL: server.URL, Model: "m"})
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), GenerateRequest{Prompt: "x"})
	require.Error(t, err)
	assert.True(t, scherrors.IsTransient(err))
	var transient *scherrors.TransientError
	require.ErrorAs(t, err, &transient)
	assert.Equal(t, 7, transient.RetryAfter)

	atomic.StoreInt32(&status, http.StatusUnauthorized)
	_, err = client.Generate(context.Background(), GenerateRequest{Prompt: "x"})
	assert.True(t, scherrors.IsPermanent(err))
}

func TestOpenAIClientGenerateNDropsFailures(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 2 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer server.Close()

	client, err := NewOpenAIClient(OpenAIConfig{BaseURL: server.URL, Model: "m"})
	require.NoError(t, err)

	results, err := client.GenerateN(context.Background(), GenerateRequest{Prompt: "x"}, 3)
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestNewOpenAIClientValidates(t *testing.T) {
	_, err := NewOpenAIClient(OpenAIConfig{Model: "m"})
	assert.Error(t, err)
	_, err = NewOpenAIClient(OpenAIConfig{BaseURL: "http://x"})
	assert.Error(t, err)
}
