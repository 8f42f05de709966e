// Package ideagen runs a multi-agent brainstorming simulation in which
// LLM-backed agents take turns under a pluggable order policy and a final
// synthesizer distills an idea card.
package ideagen

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"scholar/internal/id"
	"scholar/internal/llm"
	"scholar/internal/logging"
	"scholar/internal/observability"
	"scholar/internal/prompts"
)

// Result is a finished simulation.
type Result struct {
	ID        string    `json:"simulation_id"`
	Scenario  string    `json:"scenario"`
	Topic     string    `json:"topic"`
	Order     string    `json:"order"`
	Turns     int       `json:"turns"`
	Messages  []Message `json:"messages"`
	Idea      *Idea     `json:"idea,omitempty"`
	IdeaError string    `json:"idea_error,omitempty"`
}

// Environment holds the shared message log and turn counter. It is not safe
// for concurrent Run calls.
type Environment struct {
	scenario Scenario
	agents   []*Agent
	order    Order
	maxTurns int
	logger   logging.Logger
	tracer   *observability.TracerProvider
	now      func() time.Time

	mu       sync.Mutex
	turn     int
	messages []Message
}

// Option configures an Environment.
type Option func(*Environment)

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(e *Environment) { e.logger = logging.OrNop(logger) }
}

// WithTracer opens a span per turn.
func WithTracer(tp *observability.TracerProvider) Option {
	return func(e *Environment) { e.tracer = tp }
}

// WithMaxTurns overrides the scenario's turn budget.
func WithMaxTurns(n int) Option {
	return func(e *Environment) {
		if n > 0 {
			e.maxTurns = n
		}
	}
}

// WithOrder overrides the scenario's order policy.
func WithOrder(o Order) Option {
	return func(e *Environment) { e.order = o }
}

// NewEnvironment builds agents for every scenario participant, all sharing
// gen. The order policy comes from the scenario unless overridden; rng
// drives it.
func NewEnvironment(s Scenario, gen llm.Generator, temperature float64, rng *rand.Rand, opts ...Option) (*Environment, error) {
	if gen == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	loader, err := prompts.Default()
	if err != nil {
		return nil, err
	}

	env := &Environment{
		scenario: s,
		maxTurns: s.MaxTurns,
		logger:   logging.NewComponentLogger("ideagen"),
		now:      time.Now,
	}
	for _, spec := range s.Agents {
		env.agents = append(env.agents, &Agent{
			Name:        spec.Name,
			Role:        spec.Role,
			gen:         gen,
			loader:      loader,
			temperature: temperature,
		})
	}
	for _, opt := range opts {
		opt(env)
	}
	if env.order == nil {
		name := s.Order
		if name == "" {
			name = "sequential"
		}
		if env.order, err = NewOrder(name, rng); err != nil {
			return nil, err
		}
	}
	return env, nil
}

// Messages returns a copy of the log.
func (e *Environment) Messages() []Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Message(nil), e.messages...)
}

// Done reports whether the turn budget is spent.
func (e *Environment) Done() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.turn >= e.maxTurns
}

// Reset clears the log and the order policy state.
func (e *Environment) Reset() {
	e.mu.Lock()
	e.turn = 0
	e.messages = nil
	e.mu.Unlock()
	e.order.Reset()
}

func (e *Environment) names() []string {
	out := make([]string, len(e.agents))
	for i, a := range e.agents {
		out[i] = a.Name
	}
	return out
}

// Step runs one turn. Every selected agent speaks concurrently and sees the
// log as it stood at the start of the turn; replies are appended in
// selection order.
func (e *Environment) Step(ctx context.Context) ([]Message, error) {
	e.mu.Lock()
	state := TurnState{
		Turn:     e.turn,
		MaxTurns: e.maxTurns,
		Agents:   e.names(),
		Messages: append([]Message(nil), e.messages...),
	}
	e.mu.Unlock()

	selected := e.order.Next(state)
	for _, idx := range selected {
		if idx < 0 || idx >= len(e.agents) {
			return nil, fmt.Errorf("order %s selected agent %d of %d", e.order.Name(), idx, len(e.agents))
		}
	}
	final := state.final()

	ctx, span := e.tracer.StartSpan(ctx, observability.SpanIdeagenTurn,
		attribute.Int("scholar.ideagen.turn", state.Turn),
		attribute.Int("scholar.ideagen.speakers", len(selected)),
	)
	defer span.End()

	replies := make([]string, len(selected))
	g, gctx := errgroup.WithContext(ctx)
	for slot, idx := range selected {
		agent := e.agents[idx]
		g.Go(func() error {
			text, err := agent.speak(gctx, speakInput{
				topic:        e.scenario.Topic,
				participants: state.Agents,
				history:      state.Messages,
				turn:         state.Turn,
				maxTurns:     state.MaxTurns,
				synthesize:   final && idx == len(e.agents)-1,
			})
			replies[slot] = text
			return err
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("turn %d: %w", state.Turn+1, err)
	}

	now := e.now().UTC()
	produced := make([]Message, 0, len(selected))
	for slot, idx := range selected {
		produced = append(produced, Message{
			Sender:    e.agents[idx].Name,
			Content:   replies[slot],
			Turn:      state.Turn,
			Timestamp: now,
		})
	}

	e.mu.Lock()
	e.messages = append(e.messages, produced...)
	e.turn++
	e.mu.Unlock()

	for _, m := range produced {
		e.logger.Debug("turn %d/%d %s: %d chars", state.Turn+1, state.MaxTurns, m.Sender, len(m.Content))
	}
	return produced, nil
}

// Run steps until the turn budget is spent, then parses the idea card from
// the synthesizer's last message. onMessage, when set, sees every message as
// it is appended.
func (e *Environment) Run(ctx context.Context, onMessage func(Message)) (*Result, error) {
	e.logger.Info("simulation on %q: %d agents, order=%s, max_turns=%d",
		e.scenario.Topic, len(e.agents), e.order.Name(), e.maxTurns)

	for !e.Done() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		produced, err := e.Step(ctx)
		if err != nil {
			return nil, err
		}
		if onMessage != nil {
			for _, m := range produced {
				onMessage(m)
			}
		}
	}

	messages := e.Messages()
	res := &Result{
		ID:       id.NewSimulationID(),
		Scenario: e.scenario.Name,
		Topic:    e.scenario.Topic,
		Order:    e.order.Name(),
		Turns:    e.maxTurns,
		Messages: messages,
	}

	synth := e.agents[len(e.agents)-1].Name
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Sender != synth {
			continue
		}
		idea, err := ParseIdea(messages[i].Content)
		if err != nil {
			res.IdeaError = err.Error()
			e.logger.Warn("synthesis produced no usable idea card: %v", err)
		} else {
			res.Idea = &idea
		}
		break
	}
	if res.Idea == nil && res.IdeaError == "" {
		res.IdeaError = "synthesizer never spoke"
	}
	return res, nil
}
