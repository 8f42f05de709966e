package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"scholar/internal/config"
	"scholar/internal/llm"
	"scholar/internal/logging"
	"scholar/internal/observability"
)

// CLI carries state shared by every subcommand once initialize has run.
type CLI struct {
	v       *viper.Viper
	cfg     config.Config
	meta    config.Metadata
	obs     *observability.Observability
	gen     llm.Generator
	verbose bool
}

func newRootCommand() *cobra.Command {
	cli := &CLI{v: viper.New()}
	cli.v.SetEnvPrefix("SCHOLAR")
	cli.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	cli.v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "scholar",
		Short: "Review research proposals and brainstorm ideas with LLM agents",
		Long: fmt.Sprintf(`%s

Scores research proposals with an ensemble of LLM reviewers, a meta-review,
and self-reflection rounds, and runs multi-agent brainstorming simulations
that end in a research idea card.

%s
  scholar serve                                  # web UI and JSON API
  scholar review proposal.md                     # review a file
  cat proposal.md | scholar review - --json      # review stdin, print JSON
  scholar ideagen --topic "Graph Neural Networks"`,
			bold("scholar "+appVersion()),
			bold("EXAMPLES:")),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "Path to a YAML config file (default scholar.yaml)")
	flags.String("provider", "", "LLM provider: openai, deepseek, or mock")
	flags.String("model", "", "Model name")
	flags.String("base-url", "", "OpenAI-compatible API base URL")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.BoolVarP(&cli.verbose, "verbose", "v", false, "Verbose output")
	cli.bind(flags, map[string]string{
		"config":       "config",
		"llm.provider": "provider",
		"llm.model":    "model",
		"llm.base_url": "base-url",
		"log.level":    "log-level",
	})

	root.AddCommand(newServeCommand(cli))
	root.AddCommand(newReviewCommand(cli))
	root.AddCommand(newIdeagenCommand(cli))
	root.AddCommand(newVersionCommand())
	return root
}

// bind maps viper keys to flag names.
func (c *CLI) bind(flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if f := flags.Lookup(name); f != nil {
			_ = c.v.BindPFlag(key, f)
		}
	}
}

// initialize loads config (defaults, file, SCHOLAR_* env), overlays
// explicitly set flags, and builds observability and the generator.
func (c *CLI) initialize(logOutput io.Writer) error {
	cfg, meta, err := config.Load(config.WithConfigPath(c.v.GetString("config")))
	if err != nil {
		return err
	}
	c.overlay(&cfg)
	if c.verbose && c.v.GetString("log.level") == "" {
		cfg.Observability.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	c.cfg, c.meta = cfg, meta
	c.obs = observability.New(cfg.Observability, logOutput)
	logging.SetDefault(c.obs.Logger)

	c.gen, err = llm.New(cfg.LLM, c.obs)
	if err != nil {
		return err
	}
	return nil
}

// overlay applies every viper key that a flag or environment variable set.
func (c *CLI) overlay(cfg *config.Config) {
	str := func(key string, target *string) {
		if c.v.IsSet(key) {
			if s := strings.TrimSpace(c.v.GetString(key)); s != "" {
				*target = s
			}
		}
	}
	num := func(key string, target *int) {
		if c.v.IsSet(key) {
			*target = c.v.GetInt(key)
		}
	}
	float := func(key string, target *float64) {
		if c.v.IsSet(key) {
			*target = c.v.GetFloat64(key)
		}
	}

	str("llm.provider", &cfg.LLM.Provider)
	cfg.LLM.Provider = strings.ToLower(cfg.LLM.Provider)
	str("llm.model", &cfg.LLM.Model)
	str("llm.base_url", &cfg.LLM.BaseURL)
	str("log.level", &cfg.Observability.Logging.Level)

	str("review.rubric", &cfg.Review.Rubric)
	str("review.polarity", &cfg.Review.Polarity)
	num("review.ensemble_size", &cfg.Review.EnsembleSize)
	num("review.num_reflections", &cfg.Review.NumReflections)
	num("review.num_few_shot", &cfg.Review.NumFewShot)
	float("review.temperature", &cfg.Review.Temperature)

	str("server.addr", &cfg.Server.Addr)
	str("store.dir", &cfg.Store.Dir)

	str("ideagen.scenario", &cfg.Ideagen.Scenario)
	str("ideagen.topic", &cfg.Ideagen.Topic)
	str("ideagen.order", &cfg.Ideagen.Order)
	num("ideagen.max_turns", &cfg.Ideagen.MaxTurns)
	float("ideagen.temperature", &cfg.Ideagen.Temperature)
	if c.v.IsSet("ideagen.seed") {
		cfg.Ideagen.Seed = c.v.GetInt64("ideagen.seed")
	}
}

func (c *CLI) shutdown() {
	if c.obs == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = c.obs.Shutdown(ctx)
}
