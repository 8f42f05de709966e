package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderDeepSeek:
		if c.LLM.APIKey == "" {
			add("llm.api_key is required for provider %q", c.LLM.Provider)
		}
		if c.LLM.Model == "" {
			add("llm.model is required")
		}
	case ProviderMock:
	default:
		add("llm.provider %q is not one of openai, deepseek, mock", c.LLM.Provider)
	}
	if c.LLM.RateLimitRPS < 0 {
		add("llm.rate_limit_rps must not be negative")
	}

	switch c.Review.Rubric {
	case "extended", "short":
	default:
		add("review.rubric %q is not one of extended, short", c.Review.Rubric)
	}
	switch c.Review.Polarity {
	case "strict", "lenient":
	default:
		add("review.polarity %q is not one of strict, lenient", c.Review.Polarity)
	}
	if c.Review.EnsembleSize < 1 {
		add("review.ensemble_size must be at least 1")
	}
	if c.Review.NumReflections < 1 {
		add("review.num_reflections must be at least 1")
	}
	if c.Review.NumFewShot < 0 {
		add("review.num_few_shot must not be negative")
	}
	if c.Review.Temperature < 0 || c.Review.Temperature > 2 {
		add("review.temperature must be between 0 and 2")
	}
	if c.Review.EnsembleTemperature < 0 || c.Review.EnsembleTemperature > 2 {
		add("review.ensemble_temperature must be between 0 and 2")
	}

	if c.Server.HeartbeatInterval <= 0 {
		add("server.heartbeat_interval must be positive")
	}
	if c.Server.RateLimitPerMinute < 0 || c.Server.RateLimitBurst < 0 {
		add("server rate limits must not be negative")
	}
	if c.Store.CacheSize < 0 {
		add("store.cache_size must not be negative")
	}
	if c.Ideagen.MaxTurns < 1 {
		add("ideagen.max_turns must be at least 1")
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.New("invalid configuration: " + strings.Join(problems, "; "))
}
