package config

import (
	"time"

	"scholar/internal/observability"
)

// ValueSource describes where a configuration value originated from.
type ValueSource string

const (
	SourceDefault ValueSource = "default"
	SourceFile    ValueSource = "file"
	SourceEnv     ValueSource = "environment"
)

// Provider names accepted in llm.provider.
const (
	ProviderOpenAI   = "openai"
	ProviderDeepSeek = "deepseek"
	ProviderMock     = "mock"
)

const (
	DefaultOpenAIBaseURL   = "https://api.openai.com/v1"
	DefaultOpenAIModel     = "gpt-4o-mini"
	DefaultDeepSeekBaseURL = "https://api.deepseek.com/v1"
	DefaultDeepSeekModel   = "deepseek-chat"
)

// Config is the root configuration shared by the server and CLI.
type Config struct {
	LLM           LLMConfig            `yaml:"llm"`
	Review        ReviewConfig         `yaml:"review"`
	Server        ServerConfig         `yaml:"server"`
	Store         StoreConfig          `yaml:"store"`
	Ideagen       IdeagenConfig        `yaml:"ideagen"`
	Observability observability.Config `yaml:"observability"`
}

// LLMConfig selects the text generation backend.
type LLMConfig struct {
	Provider  string        `yaml:"provider"`
	Model     string        `yaml:"model"`
	APIKey    string        `yaml:"api_key"`
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	MaxTokens int           `yaml:"max_tokens"`

	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`

	RetryMaxAttempts int           `yaml:"retry_max_attempts"`
	RetryBaseDelay   time.Duration `yaml:"retry_base_delay"`
	RetryMaxDelay    time.Duration `yaml:"retry_max_delay"`

	BreakerFailureThreshold int           `yaml:"breaker_failure_threshold"`
	BreakerTimeout          time.Duration `yaml:"breaker_timeout"`
}

// ReviewConfig holds the pipeline defaults applied to every review request.
type ReviewConfig struct {
	Rubric              string        `yaml:"rubric"`
	Polarity            string        `yaml:"polarity"`
	NumReflections      int           `yaml:"num_reflections"`
	NumFewShot          int           `yaml:"num_few_shot"`
	EnsembleSize        int           `yaml:"ensemble_size"`
	Temperature         float64       `yaml:"temperature"`
	EnsembleTemperature float64       `yaml:"ensemble_temperature"`
	MaxProposalTokens   int           `yaml:"max_proposal_tokens"`
	Timeout             time.Duration `yaml:"timeout"`
}

// ServerConfig configures the HTTP front end.
type ServerConfig struct {
	Addr              string        `yaml:"addr"`
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
	AllowedOrigins    []string      `yaml:"allowed_origins"`
	MaxUploadBytes    int64         `yaml:"max_upload_bytes"`
	FetchTimeout      time.Duration `yaml:"fetch_timeout"`

	// Per-client limits on /evaluate and /extract; zero disables.
	RateLimitPerMinute int `yaml:"rate_limit_per_minute"`
	RateLimitBurst     int `yaml:"rate_limit_burst"`
}

// StoreConfig configures the evaluation and feedback logs.
type StoreConfig struct {
	Dir       string `yaml:"dir"`
	CacheSize int    `yaml:"cache_size"`
}

// IdeagenConfig configures the idea-generation simulation.
type IdeagenConfig struct {
	Scenario    string  `yaml:"scenario"`
	Topic       string  `yaml:"topic"`
	Order       string  `yaml:"order"`
	MaxTurns    int     `yaml:"max_turns"`
	Temperature float64 `yaml:"temperature"`
	Seed        int64   `yaml:"seed"`
}

// Metadata contains provenance details for loaded configuration.
type Metadata struct {
	sources  map[string]ValueSource
	path     string
	loadedAt time.Time
}

// Source returns the origin for the given configuration field.
func (m Metadata) Source(field string) ValueSource {
	if m.sources == nil {
		return SourceDefault
	}
	if src, ok := m.sources[field]; ok {
		return src
	}
	return SourceDefault
}

// Path returns the config file that was read, if any.
func (m Metadata) Path() string {
	return m.path
}

// LoadedAt returns the timestamp when the configuration was constructed.
func (m Metadata) LoadedAt() time.Time {
	return m.loadedAt
}
