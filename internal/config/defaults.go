package config

import (
	"time"

	"scholar/internal/observability"
)

// Default returns the configuration used when nothing else is provided.
func Default() Config {
	return Config{
		LLM: LLMConfig{
			Provider:                ProviderMock,
			Timeout:                 120 * time.Second,
			MaxTokens:               4096,
			RateLimitRPS:            2,
			RateLimitBurst:          4,
			RetryMaxAttempts:        3,
			RetryBaseDelay:          time.Second,
			RetryMaxDelay:           30 * time.Second,
			BreakerFailureThreshold: 5,
			BreakerTimeout:          30 * time.Second,
		},
		Review: ReviewConfig{
			Rubric:              "extended",
			Polarity:            "strict",
			NumReflections:      3,
			NumFewShot:          0,
			EnsembleSize:        3,
			Temperature:         0.1,
			EnsembleTemperature: 0.75,
			MaxProposalTokens:   24000,
			Timeout:             15 * time.Minute,
		},
		Server: ServerConfig{
			Addr:               ":8080",
			HeartbeatInterval:  3 * time.Second,
			AllowedOrigins:     []string{"*"},
			MaxUploadBytes:     16 << 20,
			FetchTimeout:       30 * time.Second,
			RateLimitPerMinute: 30,
			RateLimitBurst:     10,
		},
		Store: StoreConfig{
			Dir:       "logs",
			CacheSize: 256,
		},
		Ideagen: IdeagenConfig{
			Order:       "sequential",
			MaxTurns:    8,
			Temperature: 0.7,
			Seed:        1,
		},
		Observability: observability.DefaultConfig(),
	}
}
