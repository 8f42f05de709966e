package review

import (
	"context"
	"strings"

	"scholar/internal/llm"
	"scholar/internal/logging"
)

// ConvergenceMarker in a reflection reply ends the loop after that round.
const ConvergenceMarker = "I am done"

// ReflectionState is the state of the reflection loop.
type ReflectionState string

const (
	ReflectionActive    ReflectionState = "active"
	ReflectionConverged ReflectionState = "converged"
	ReflectionExhausted ReflectionState = "exhausted"
	// ReflectionSkipped means no extra rounds were configured.
	ReflectionSkipped ReflectionState = "skipped"
)

// ReflectionOutcome is the terminal result of the loop.
type ReflectionOutcome struct {
	Record     Record
	Transcript llm.Transcript
	State      ReflectionState
	// Rounds counts the extra rounds actually executed.
	Rounds int
}

// reflector runs the bounded self-critique loop. Rounds are strictly
// sequential since each one extends the previous transcript.
type reflector struct {
	gen     llm.Generator
	prompts promptBuilder
	logger  logging.Logger
}

// run executes up to total-1 extra rounds; round 1 was the initial review.
// A failed generation or extraction aborts the loop with an error instead of
// returning a stale record.
func (r reflector) run(ctx context.Context, rec Record, transcript llm.Transcript, total int, system string, temperature float64) (ReflectionOutcome, error) {
	out := ReflectionOutcome{Record: rec, Transcript: transcript, State: ReflectionSkipped}
	if total <= 1 {
		return out, nil
	}

	out.State = ReflectionActive
	for round := 2; round <= total; round++ {
		prompt, err := r.prompts.reflectionPrompt(round, total)
		if err != nil {
			return out, err
		}

		res, err := r.gen.Generate(ctx, llm.GenerateRequest{
			Prompt:      prompt,
			System:      system,
			Temperature: temperature,
			History:     out.Transcript,
		})
		if err != nil {
			return out, err
		}
		next, err := Extract(res.Text)
		if err != nil {
			return out, err
		}

		out.Record = next
		out.Transcript = res.Transcript
		out.Rounds++

		if strings.Contains(res.Text, ConvergenceMarker) {
			out.State = ReflectionConverged
			r.logger.Info("reflection converged after round %d/%d", round, total)
			return out, nil
		}
	}

	out.State = ReflectionExhausted
	return out, nil
}
