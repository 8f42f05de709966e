package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"scholar/internal/llm"
	"scholar/internal/logging"
	"scholar/internal/review"
	jsonx "scholar/internal/shared/json"
)

func newReviewCommand(cli *CLI) *cobra.Command {
	var (
		callFile string
		asJSON   bool
		history  bool
	)
	cmd := &cobra.Command{
		Use:   "review <file|->",
		Short: "Review a research proposal",
		Long:  "Review a proposal read from a file, or from stdin when the argument is -.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			proposal, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			var callForProposal string
			if callFile != "" {
				if callForProposal, err = readInput(cmd.InOrStdin(), callFile); err != nil {
					return err
				}
			}

			if err := cli.initialize(cmd.ErrOrStderr()); err != nil {
				return err
			}
			defer cli.shutdown()

			res, err := cli.review(cmd.Context(), proposal, callForProposal, history)
			if err != nil {
				return err
			}
			if asJSON {
				return writeReviewJSON(cmd.OutOrStdout(), res)
			}
			printReview(cmd.OutOrStdout(), res)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&callFile, "call", "", "File holding the call for proposals")
	flags.BoolVar(&asJSON, "json", false, "Print the review as JSON")
	flags.BoolVar(&history, "history", false, "Include the review transcript in JSON output")
	flags.String("rubric", "", "Rubric: extended or short")
	flags.String("polarity", "", "Reviewer polarity: strict or lenient")
	flags.Int("ensemble", 0, "Number of ensemble reviewers")
	flags.Int("reflections", 0, "Maximum reflection rounds")
	flags.Int("few-shot", 0, "Number of few-shot exemplars")
	flags.Float64("temperature", 0, "Sampling temperature for single, meta, and reflection calls")
	cli.bind(flags, map[string]string{
		"review.rubric":          "rubric",
		"review.polarity":        "polarity",
		"review.ensemble_size":   "ensemble",
		"review.num_reflections": "reflections",
		"review.num_few_shot":    "few-shot",
		"review.temperature":     "temperature",
	})
	return cmd
}

func (c *CLI) review(ctx context.Context, proposal, callForProposal string, history bool) (*review.Result, error) {
	cfg := c.cfg.Review
	rubric, err := review.ParseRubricKind(cfg.Rubric)
	if err != nil {
		return nil, err
	}
	polarity, err := review.ParsePolarity(cfg.Polarity)
	if err != nil {
		return nil, err
	}

	reviewer, err := review.NewReviewer(c.gen,
		review.WithLogger(logging.NewComponentLogger("review")),
		review.WithMetrics(c.obs.Review),
		review.WithTracer(c.obs.Tracer),
		review.WithTimeout(cfg.Timeout),
		review.WithMaxProposalTokens(cfg.MaxProposalTokens),
	)
	if err != nil {
		return nil, err
	}
	return reviewer.Review(ctx, review.Request{
		Proposal:            proposal,
		CallForProposal:     callForProposal,
		Rubric:              rubric,
		Polarity:            polarity,
		NumFewShot:          cfg.NumFewShot,
		EnsembleSize:        cfg.EnsembleSize,
		NumReflections:      cfg.NumReflections,
		Temperature:         cfg.Temperature,
		EnsembleTemperature: cfg.EnsembleTemperature,
		ReturnHistory:       history,
	})
}

type reviewOutput struct {
	Review           review.Record             `json:"review"`
	Decision         string                    `json:"decision,omitempty"`
	Reflection       review.ReflectionState    `json:"reflection"`
	ReflectionRounds int                       `json:"reflection_rounds"`
	Reviewers        int                       `json:"reviewers"`
	MetaReviewFailed bool                      `json:"meta_review_failed,omitempty"`
	Aggregation      *review.AggregationReport `json:"aggregation,omitempty"`
	Truncated        bool                      `json:"truncated,omitempty"`
	Transcript       llm.Transcript            `json:"thinking_process,omitempty"`
}

func writeReviewJSON(w io.Writer, res *review.Result) error {
	out := reviewOutput{
		Review:           res.Record,
		Reflection:       res.Reflection,
		ReflectionRounds: res.ReflectionRounds,
		Reviewers:        max(1, len(res.Ensemble)),
		MetaReviewFailed: res.MetaReviewFailed,
		Aggregation:      res.Aggregation,
		Truncated:        res.Truncated,
		Transcript:       res.Transcript,
	}
	if d, ok := res.Record.Decision(); ok {
		out.Decision = string(d)
	}
	data, err := jsonx.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// readInput reads a file, or stdin for "-".
func readInput(stdin io.Reader, name string) (string, error) {
	var (
		data []byte
		err  error
	)
	if name == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("%s is empty", name)
	}
	return text, nil
}
