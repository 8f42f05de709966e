package llm

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	scherrors "scholar/internal/errors"
	"scholar/internal/httpclient"
	"scholar/internal/logging"
	jsonx "scholar/internal/shared/json"
)

const maxResponseBytes = 8 << 20

// OpenAIConfig configures an OpenAI-compatible chat completions endpoint.
// DeepSeek and most hosted gateways speak the same protocol.
type OpenAIConfig struct {
	BaseURL   string
	APIKey    string
	Model     string
	Timeout   time.Duration
	MaxTokens int
	Headers   map[string]string
}

// OpenAIClient implements Generator against /chat/completions.
type OpenAIClient struct {
	cfg        OpenAIConfig
	endpoint   string
	httpClient *http.Client
	logger     logging.Logger
}

var _ Generator = (*OpenAIClient)(nil)

// NewOpenAIClient constructs a client for the given endpoint.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("model is required")
	}
	logger := logging.NewComponentLogger("llm-openai")
	return &OpenAIClient{
		cfg:        cfg,
		endpoint:   strings.TrimRight(cfg.BaseURL, "/") + "/chat/completions",
		httpClient: httpclient.New(cfg.Timeout, logger),
		logger:     logger,
	}, nil
}

// Model returns the configured model name.
func (c *OpenAIClient) Model() string {
	return c.cfg.Model
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Stream      bool      `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Generate issues one chat completion.
func (c *OpenAIClient) Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	messages := make([]Message, 0, len(req.History)+2)
	if req.System != "" {
		messages = append(messages, Message{Role: RoleSystem, Content: req.System})
	}
	messages = append(messages, req.History...)
	messages = append(messages, Message{Role: RoleUser, Content: req.Prompt})

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.cfg.MaxTokens
	}
	body, err := jsonx.Marshal(chatRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return GenerateResult{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return GenerateResult{}, scherrors.NewPermanentError(err, "")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	for k, v := range c.cfg.Headers {
		httpReq.Header.Set(k, v)
	}

	c.logger.Debug("POST %s model=%s messages=%d", c.endpoint, c.cfg.Model, len(messages))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return GenerateResult{}, ctx.Err()
		}
		return GenerateResult{}, scherrors.NewTransientError(err, "")
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := httpclient.ReadAllWithLimit(resp.Body, maxResponseBytes)
	if err != nil {
		return GenerateResult{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Debug("error response %d: %s", resp.StatusCode, string(respBody))
		return GenerateResult{}, scherrors.FromHTTPStatus(resp.StatusCode, string(respBody), parseRetryAfter(resp.Header))
	}

	var decoded chatResponse
	if err := jsonx.Unmarshal(respBody, &decoded); err != nil {
		return GenerateResult{}, fmt.Errorf("decode response: %w", err)
	}
	if decoded.Error != nil {
		return GenerateResult{}, scherrors.NewPermanentError(
			fmt.Errorf("%s: %s", decoded.Error.Type, decoded.Error.Message), "")
	}
	if len(decoded.Choices) == 0 {
		return GenerateResult{}, fmt.Errorf("response contained no choices")
	}

	text := decoded.Choices[0].Message.Content
	return GenerateResult{
		Text:       text,
		Transcript: completeTranscript(req, text),
		Usage: Usage{
			PromptTokens:     decoded.Usage.PromptTokens,
			CompletionTokens: decoded.Usage.CompletionTokens,
		},
		Model: c.cfg.Model,
	}, nil
}

// GenerateN issues n concurrent independent completions.
func (c *OpenAIClient) GenerateN(ctx context.Context, req GenerateRequest, n int) ([]GenerateResult, error) {
	return FanOut(ctx, c.Generate, req, n, c.logger)
}

func parseRetryAfter(h http.Header) int {
	value := strings.TrimSpace(h.Get("Retry-After"))
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return seconds
	}
	return 0
}
