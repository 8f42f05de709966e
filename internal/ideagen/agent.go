package ideagen

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"scholar/internal/llm"
	"scholar/internal/prompts"
)

// Message is one utterance in the shared log.
type Message struct {
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	Turn      int       `json:"turn"`
	Timestamp time.Time `json:"timestamp"`
}

// Agent is one LLM-backed participant.
type Agent struct {
	Name string
	Role string

	gen         llm.Generator
	loader      *prompts.PromptLoader
	temperature float64
}

// speakInput is the context an agent sees when taking its turn.
type speakInput struct {
	topic        string
	participants []string
	history      []Message
	turn         int
	maxTurns     int
	synthesize   bool
}

func (a *Agent) speak(ctx context.Context, in speakInput) (string, error) {
	name := prompts.IdeagenTurn
	if in.synthesize {
		name = prompts.IdeagenSynthesis
	}
	prompt, err := a.loader.RenderPrompt(name, map[string]string{
		"topic":        in.topic,
		"agent_name":   a.Name,
		"participants": strings.Join(others(in.participants, a.Name), ", "),
		"history":      renderHistory(in.history),
		"turn":         strconv.Itoa(in.turn + 1),
		"max_turns":    strconv.Itoa(in.maxTurns),
	})
	if err != nil {
		return "", err
	}

	res, err := a.gen.Generate(ctx, llm.GenerateRequest{
		Prompt:      prompt,
		System:      strings.TrimSpace(a.Role),
		Temperature: a.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", a.Name, err)
	}
	return strings.TrimSpace(res.Text), nil
}

func renderHistory(history []Message) string {
	if len(history) == 0 {
		return "(nobody has spoken yet)"
	}
	var b strings.Builder
	for _, m := range history {
		fmt.Fprintf(&b, "[%s]: %s\n\n", m.Sender, m.Content)
	}
	return strings.TrimSpace(b.String())
}

func others(names []string, self string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != self {
			out = append(out, n)
		}
	}
	return out
}
