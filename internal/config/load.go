package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvLookup resolves the value for an environment variable.
type EnvLookup func(string) (string, bool)

// DefaultEnvLookup delegates to os.LookupEnv.
func DefaultEnvLookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

// Option customises the loader behaviour.
type Option func(*loadOptions)

type loadOptions struct {
	envLookup  EnvLookup
	readFile   func(string) ([]byte, error)
	configPath string
}

// WithEnv supplies a custom environment lookup implementation.
func WithEnv(lookup EnvLookup) Option {
	return func(o *loadOptions) {
		o.envLookup = lookup
	}
}

// WithConfigPath forces the loader to read configuration from a specific file.
func WithConfigPath(path string) Option {
	return func(o *loadOptions) {
		o.configPath = path
	}
}

// WithFileReader injects a custom reader, used primarily for tests.
func WithFileReader(reader func(string) ([]byte, error)) Option {
	return func(o *loadOptions) {
		o.readFile = reader
	}
}

// Load builds the configuration from defaults, then the YAML file, then the
// environment. Later layers win.
func Load(opts ...Option) (Config, Metadata, error) {
	options := loadOptions{
		envLookup: DefaultEnvLookup,
		readFile:  os.ReadFile,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.envLookup == nil {
		options.envLookup = DefaultEnvLookup
	}

	meta := Metadata{sources: map[string]ValueSource{}, loadedAt: time.Now()}
	cfg := Default()

	if err := applyFile(&cfg, &meta, options); err != nil {
		return Config{}, Metadata{}, err
	}
	if err := applyEnv(&cfg, &meta, options.envLookup); err != nil {
		return Config{}, Metadata{}, err
	}
	resolveProvider(&cfg, &meta, options.envLookup)

	return cfg, meta, nil
}

func applyFile(cfg *Config, meta *Metadata, options loadOptions) error {
	path := options.configPath
	explicit := path != ""
	if !explicit {
		if value, ok := options.envLookup("SCHOLAR_CONFIG"); ok && value != "" {
			path = value
			explicit = true
		} else {
			path = "scholar.yaml"
		}
	}

	data, err := options.readFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}

	var parsed Config
	parsed = *cfg
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	var raw map[string]map[string]any
	if err := yaml.Unmarshal(data, &raw); err == nil {
		for section, fields := range raw {
			for field := range fields {
				meta.sources[section+"."+field] = SourceFile
			}
		}
	}

	*cfg = parsed
	meta.path = path
	return nil
}

type envBinding struct {
	keys  []string
	field string
	apply func(cfg *Config, value string) error
}

func envBindings() []envBinding {
	return []envBinding{
		{keys: []string{"SCHOLAR_LLM_PROVIDER"}, field: "llm.provider", apply: func(c *Config, v string) error {
			c.LLM.Provider = strings.ToLower(v)
			return nil
		}},
		{keys: []string{"SCHOLAR_LLM_MODEL"}, field: "llm.model", apply: func(c *Config, v string) error {
			c.LLM.Model = v
			return nil
		}},
		{keys: []string{"SCHOLAR_LLM_API_KEY"}, field: "llm.api_key", apply: func(c *Config, v string) error {
			c.LLM.APIKey = v
			return nil
		}},
		{keys: []string{"SCHOLAR_LLM_BASE_URL"}, field: "llm.base_url", apply: func(c *Config, v string) error {
			c.LLM.BaseURL = v
			return nil
		}},
		{keys: []string{"SCHOLAR_LLM_TIMEOUT"}, field: "llm.timeout", apply: func(c *Config, v string) error {
			return parseDuration(v, &c.LLM.Timeout)
		}},
		{keys: []string{"SCHOLAR_LLM_RATE_LIMIT_RPS"}, field: "llm.rate_limit_rps", apply: func(c *Config, v string) error {
			return parseFloat(v, &c.LLM.RateLimitRPS)
		}},
		{keys: []string{"SCHOLAR_REVIEW_ENSEMBLE_SIZE"}, field: "review.ensemble_size", apply: func(c *Config, v string) error {
			return parseInt(v, &c.Review.EnsembleSize)
		}},
		{keys: []string{"SCHOLAR_REVIEW_NUM_REFLECTIONS"}, field: "review.num_reflections", apply: func(c *Config, v string) error {
			return parseInt(v, &c.Review.NumReflections)
		}},
		{keys: []string{"SCHOLAR_REVIEW_NUM_FEW_SHOT"}, field: "review.num_few_shot", apply: func(c *Config, v string) error {
			return parseInt(v, &c.Review.NumFewShot)
		}},
		{keys: []string{"SCHOLAR_REVIEW_TEMPERATURE"}, field: "review.temperature", apply: func(c *Config, v string) error {
			return parseFloat(v, &c.Review.Temperature)
		}},
		{keys: []string{"SCHOLAR_REVIEW_TIMEOUT"}, field: "review.timeout", apply: func(c *Config, v string) error {
			return parseDuration(v, &c.Review.Timeout)
		}},
		{keys: []string{"SCHOLAR_SERVER_ADDR", "PORT"}, field: "server.addr", apply: func(c *Config, v string) error {
			if !strings.Contains(v, ":") {
				v = ":" + v
			}
			c.Server.Addr = v
			return nil
		}},
		{keys: []string{"SCHOLAR_STORE_DIR"}, field: "store.dir", apply: func(c *Config, v string) error {
			c.Store.Dir = v
			return nil
		}},
		{keys: []string{"SCHOLAR_LOG_LEVEL"}, field: "observability.logging.level", apply: func(c *Config, v string) error {
			c.Observability.Logging.Level = strings.ToLower(v)
			return nil
		}},
		{keys: []string{"SCHOLAR_LOG_FORMAT"}, field: "observability.logging.format", apply: func(c *Config, v string) error {
			c.Observability.Logging.Format = strings.ToLower(v)
			return nil
		}},
	}
}

func applyEnv(cfg *Config, meta *Metadata, lookup EnvLookup) error {
	for _, binding := range envBindings() {
		for _, key := range binding.keys {
			value, ok := lookup(key)
			value = strings.TrimSpace(value)
			if !ok || value == "" {
				continue
			}
			if err := binding.apply(cfg, value); err != nil {
				return fmt.Errorf("environment variable %s: %w", key, err)
			}
			meta.sources[binding.field] = SourceEnv
			break
		}
	}
	return nil
}

// resolveProvider fills credentials from the provider-specific variables the
// web demo has always honoured. DEEPSEEK_API_KEY wins over OPENAI_API_KEY.
func resolveProvider(cfg *Config, meta *Metadata, lookup EnvLookup) {
	env := func(key string) string {
		value, _ := lookup(key)
		return strings.TrimSpace(value)
	}

	if cfg.LLM.APIKey == "" {
		if key := env("DEEPSEEK_API_KEY"); key != "" {
			cfg.LLM.APIKey = key
			meta.sources["llm.api_key"] = SourceEnv
			if meta.Source("llm.provider") == SourceDefault {
				cfg.LLM.Provider = ProviderDeepSeek
				meta.sources["llm.provider"] = SourceEnv
			}
			if cfg.LLM.BaseURL == "" {
				cfg.LLM.BaseURL = env("DEEPSEEK_BASE_URL")
			}
		} else if key := env("OPENAI_API_KEY"); key != "" {
			cfg.LLM.APIKey = key
			meta.sources["llm.api_key"] = SourceEnv
			if meta.Source("llm.provider") == SourceDefault {
				cfg.LLM.Provider = ProviderOpenAI
				meta.sources["llm.provider"] = SourceEnv
			}
			if cfg.LLM.BaseURL == "" {
				cfg.LLM.BaseURL = env("OPENAI_BASE_URL")
			}
			if cfg.LLM.Model == "" {
				cfg.LLM.Model = env("OPENAI_MODEL_NAME")
			}
		}
	}

	switch cfg.LLM.Provider {
	case ProviderDeepSeek:
		if cfg.LLM.BaseURL == "" {
			cfg.LLM.BaseURL = DefaultDeepSeekBaseURL
		}
		if cfg.LLM.Model == "" {
			cfg.LLM.Model = DefaultDeepSeekModel
		}
	case ProviderOpenAI:
		if cfg.LLM.BaseURL == "" {
			cfg.LLM.BaseURL = DefaultOpenAIBaseURL
		}
		if cfg.LLM.Model == "" {
			cfg.LLM.Model = DefaultOpenAIModel
		}
	case ProviderMock:
		if cfg.LLM.Model == "" {
			cfg.LLM.Model = ProviderMock
		}
	}
}

func parseInt(value string, target *int) error {
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse int %q: %w", value, err)
	}
	*target = parsed
	return nil
}

func parseFloat(value string, target *float64) error {
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("parse float %q: %w", value, err)
	}
	*target = parsed
	return nil
}

func parseDuration(value string, target *time.Duration) error {
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", value, err)
	}
	*target = parsed
	return nil
}
