package main

import (
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"scholar/internal/ideagen"
	"scholar/internal/logging"
	jsonx "scholar/internal/shared/json"
)

func newIdeagenCommand(cli *CLI) *cobra.Command {
	var (
		outPath  string
		doReview bool
		quiet    bool
	)
	cmd := &cobra.Command{
		Use:   "ideagen",
		Short: "Run a multi-agent brainstorming simulation",
		Long: fmt.Sprintf(`Run a brainstorming simulation in which scenario agents take turns under an
order policy and a synthesizer distills a research idea card.

Built-in scenarios: %s
Order policies: %s`,
			strings.Join(ideagen.BuiltinScenarios(), ", "),
			strings.Join(ideagen.OrderNames(), ", ")),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.initialize(cmd.ErrOrStderr()); err != nil {
				return err
			}
			defer cli.shutdown()

			cfg := cli.cfg.Ideagen
			if strings.TrimSpace(cfg.Topic) == "" {
				return fmt.Errorf("--topic is required")
			}
			scenarioName := cfg.Scenario
			if scenarioName == "" {
				scenarioName = "vertical_collaboration"
			}
			scenario, err := ideagen.LoadScenario(scenarioName, cfg.Topic)
			if err != nil {
				return err
			}

			rng := rand.New(rand.NewSource(cfg.Seed))
			opts := []ideagen.Option{
				ideagen.WithLogger(logging.NewComponentLogger("ideagen")),
				ideagen.WithTracer(cli.obs.Tracer),
			}
			if cli.v.IsSet("ideagen.max_turns") {
				opts = append(opts, ideagen.WithMaxTurns(cfg.MaxTurns))
			}
			if cli.v.IsSet("ideagen.order") {
				order, err := ideagen.NewOrder(cfg.Order, rng)
				if err != nil {
					return err
				}
				opts = append(opts, ideagen.WithOrder(order))
			}

			env, err := ideagen.NewEnvironment(scenario, cli.gen, cfg.Temperature, rng, opts...)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var onMessage func(ideagen.Message)
			if !quiet {
				onMessage = func(m ideagen.Message) { printMessage(out, m) }
			}
			res, err := env.Run(cmd.Context(), onMessage)
			if err != nil {
				return err
			}

			if res.Idea != nil {
				printIdea(out, *res.Idea)
			} else {
				fmt.Fprintln(out, yellow("No idea card: "+res.IdeaError))
			}

			if doReview && res.Idea != nil {
				reviewed, err := cli.review(cmd.Context(), res.Idea.Proposal(), "", false)
				if err != nil {
					return fmt.Errorf("review idea: %w", err)
				}
				fmt.Fprintln(out)
				printReview(out, reviewed)
			}

			if outPath != "" {
				data, err := jsonx.MarshalIndent(res, "", "  ")
				if err != nil {
					return err
				}
				if err := os.WriteFile(outPath, data, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", outPath, err)
				}
				fmt.Fprintln(cmd.ErrOrStderr(), gray("simulation saved to "+outPath))
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.String("scenario", "", "Built-in scenario name or path to a scenario YAML file")
	flags.String("topic", "", "Research topic substituted into the scenario")
	flags.String("order", "", "Override the scenario's order policy")
	flags.Int("max-turns", 0, "Override the scenario's turn budget")
	flags.Int64("seed", 0, "Seed for the order policy's random choices")
	flags.Float64("temperature", 0, "Sampling temperature for agent replies")
	flags.StringVar(&outPath, "out", "", "Write the full simulation as JSON to this file")
	flags.BoolVar(&doReview, "review", false, "Review the resulting idea card")
	flags.BoolVarP(&quiet, "quiet", "q", false, "Only print the idea card")
	cli.bind(flags, map[string]string{
		"ideagen.scenario":    "scenario",
		"ideagen.topic":       "topic",
		"ideagen.order":       "order",
		"ideagen.max_turns":   "max-turns",
		"ideagen.seed":        "seed",
		"ideagen.temperature": "temperature",
	})
	return cmd
}
