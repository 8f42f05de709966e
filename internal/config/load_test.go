package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(values map[string]string) EnvLookup {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func noFile(string) ([]byte, error) {
	return nil, os.ErrNotExist
}

func TestLoadDefaults(t *testing.T) {
	cfg, meta, err := Load(WithEnv(envMap(nil)), WithFileReader(noFile))
	require.NoError(t, err)

	assert.Equal(t, ProviderMock, cfg.LLM.Provider)
	assert.Equal(t, 3, cfg.Review.EnsembleSize)
	assert.Equal(t, 3, cfg.Review.NumReflections)
	assert.Equal(t, 0.1, cfg.Review.Temperature)
	assert.Equal(t, 3*time.Second, cfg.Server.HeartbeatInterval)
	assert.Equal(t, SourceDefault, meta.Source("llm.provider"))
	assert.Empty(t, meta.Path())
	require.NoError(t, cfg.Validate())
}

func TestLoadFileThenEnv(t *testing.T) {
	file := []byte(`
llm:
  provider: openai
  api_key: file-key
  model: gpt-4o
review:
  ensemble_size: 5
  timeout: 2m
`)
	reader := func(path string) ([]byte, error) {
		assert.Equal(t, "custom.yaml", path)
		return file, nil
	}
	env := envMap(map[string]string{
		"SCHOLAR_REVIEW_ENSEMBLE_SIZE": "4",
		"PORT":                         "9090",
	})

	cfg, meta, err := Load(WithEnv(env), WithFileReader(reader), WithConfigPath("custom.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, DefaultOpenAIBaseURL, cfg.LLM.BaseURL)
	assert.Equal(t, 4, cfg.Review.EnsembleSize)
	assert.Equal(t, 2*time.Minute, cfg.Review.Timeout)
	assert.Equal(t, 3, cfg.Review.NumReflections, "unset fields keep defaults")
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, SourceFile, meta.Source("llm.model"))
	assert.Equal(t, SourceEnv, meta.Source("review.ensemble_size"))
	assert.Equal(t, "custom.yaml", meta.Path())
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	_, _, err := Load(WithEnv(envMap(nil)), WithFileReader(noFile), WithConfigPath("missing.yaml"))
	require.Error(t, err)
}

func TestLoadProviderKeys(t *testing.T) {
	t.Run("deepseek wins", func(t *testing.T) {
		cfg, _, err := Load(WithFileReader(noFile), WithEnv(envMap(map[string]string{
			"DEEPSEEK_API_KEY": "ds",
			"OPENAI_API_KEY":   "oa",
		})))
		require.NoError(t, err)
		assert.Equal(t, ProviderDeepSeek, cfg.LLM.Provider)
		assert.Equal(t, "ds", cfg.LLM.APIKey)
		assert.Equal(t, DefaultDeepSeekModel, cfg.LLM.Model)
		assert.Equal(t, DefaultDeepSeekBaseURL, cfg.LLM.BaseURL)
	})

	t.Run("openai model name", func(t *testing.T) {
		cfg, _, err := Load(WithFileReader(noFile), WithEnv(envMap(map[string]string{
			"OPENAI_API_KEY":    "oa",
			"OPENAI_MODEL_NAME": "gpt-4.1",
			"OPENAI_BASE_URL":   "http://proxy/v1",
		})))
		require.NoError(t, err)
		assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
		assert.Equal(t, "gpt-4.1", cfg.LLM.Model)
		assert.Equal(t, "http://proxy/v1", cfg.LLM.BaseURL)
	})
}

func TestLoadRejectsBadEnvValue(t *testing.T) {
	_, _, err := Load(WithFileReader(noFile), WithEnv(envMap(map[string]string{
		"SCHOLAR_REVIEW_TEMPERATURE": "warm",
	})))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SCHOLAR_REVIEW_TEMPERATURE")
}

func TestValidateCollectsProblems(t *testing.T) {
	cfg := Default()
	cfg.LLM.Provider = ProviderOpenAI
	cfg.Review.EnsembleSize = 0
	cfg.Review.Temperature = 3
	cfg.Review.Polarity = "neutral"

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"llm.api_key", "ensemble_size", "temperature", "polarity"} {
		assert.Contains(t, err.Error(), want)
	}
}
