package ideagen

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
)

// TurnState is what an order policy sees when picking speakers.
type TurnState struct {
	Turn     int
	MaxTurns int
	Agents   []string
	Messages []Message
}

func (s TurnState) final() bool { return s.Turn >= s.MaxTurns-1 }

// synthesizer is the index of the last agent, which always takes the final turn.
func (s TurnState) synthesizer() int { return len(s.Agents) - 1 }

// speakers are every agent except the synthesizer.
func (s TurnState) speakers() []int {
	n := len(s.Agents) - 1
	if n < 1 {
		return []int{0}
	}
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func (s TurnState) lastSender(back int) (string, bool) {
	if len(s.Messages) < back {
		return "", false
	}
	return s.Messages[len(s.Messages)-back].Sender, true
}

// Order picks which agents speak in the next turn. Every policy hands the
// final turn to the synthesizer alone.
type Order interface {
	Name() string
	Next(state TurnState) []int
	Reset()
}

type orderFactory func(rng *rand.Rand) Order

var orders = map[string]orderFactory{
	"sequential":  func(*rand.Rand) Order { return &sequentialOrder{} },
	"chaotic":     func(rng *rand.Rand) Order { return &chaoticOrder{rng: rng} },
	"competitive": func(rng *rand.Rand) Order { return &competitiveOrder{rng: rng} },
	"adversarial": func(rng *rand.Rand) Order { return &adversarialOrder{rng: rng} },
	"disruptive":  func(rng *rand.Rand) Order { return &disruptiveOrder{rng: rng} },
	"toxic":       func(rng *rand.Rand) Order { return &toxicOrder{rng: rng} },

	"controlled_chaos":   func(rng *rand.Rand) Order { return &controlledChaosOrder{rng: rng} },
	"debate_style":       func(rng *rand.Rand) Order { return &debateStyleOrder{rng: rng} },
	"light_chaos":        func(rng *rand.Rand) Order { return &lightChaosOrder{rng: rng} },
	"medium_chaos":       func(rng *rand.Rand) Order { return &mediumChaosOrder{rng: rng} },
	"high_chaos":         func(rng *rand.Rand) Order { return &highChaosOrder{rng: rng} },
	"intelligent_chaos":  func(rng *rand.Rand) Order { return &intelligentChaosOrder{rng: rng} },
	"interruption_chaos": func(rng *rand.Rand) Order { return &interruptionChaosOrder{rng: rng} },
	"aggressive_chaos":   func(rng *rand.Rand) Order { return &aggressiveChaosOrder{rng: rng} },
	"debate_chaos":       func(rng *rand.Rand) Order { return &debateChaosOrder{rng: rng} },
	"total_chaos":        func(rng *rand.Rand) Order { return &totalChaosOrder{rng: rng} },
}

// NewOrder looks up a policy by name. rng drives every random choice; nil
// seeds a source from 1.
func NewOrder(name string, rng *rand.Rand) (Order, error) {
	factory, ok := orders[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown order %q (known: %s)", name, strings.Join(OrderNames(), ", "))
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return factory(rng), nil
}

// OrderNames lists the registered policies.
func OrderNames() []string {
	names := make([]string, 0, len(orders))
	for name := range orders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// sequentialOrder is round-robin over the speakers.
type sequentialOrder struct {
	next int
}

func (o *sequentialOrder) Name() string { return "sequential" }
func (o *sequentialOrder) Reset()       { o.next = 0 }

func (o *sequentialOrder) Next(s TurnState) []int {
	if s.final() {
		return []int{s.synthesizer()}
	}
	pool := s.speakers()
	idx := pool[o.next%len(pool)]
	o.next = (o.next + 1) % len(pool)
	return []int{idx}
}

// chaoticOrder mixes simultaneous speakers, random picks, and interruptions
// by the previous speaker, never more than twice in a row.
type chaoticOrder struct {
	rng *rand.Rand
}

func (o *chaoticOrder) Name() string { return "chaotic" }
func (o *chaoticOrder) Reset()       {}

func (o *chaoticOrder) Next(s TurnState) []int {
	if s.final() {
		return []int{s.synthesizer()}
	}
	pool := s.speakers()
	if o.rng.Float64() < 0.3 && len(pool) >= 2 {
		return sample(o.rng, pool, between(o.rng, 2, min(4, len(pool))))
	}
	if o.rng.Float64() < 0.7 {
		return []int{pick(o.rng, pool)}
	}

	last, ok := s.lastSender(1)
	if !ok {
		return []int{pick(o.rng, pool)}
	}
	if prev, ok := s.lastSender(2); ok && prev == last {
		if others := excluding(s, pool, last); len(others) > 0 {
			return []int{pick(o.rng, others)}
		}
	}
	if i, ok := indexOf(s, pool, last); ok {
		return []int{i}
	}
	return []int{pick(o.rng, pool)}
}

// competitiveOrder favors interruptions and topic jumps away from the
// previous speaker.
type competitiveOrder struct {
	rng *rand.Rand
}

func (o *competitiveOrder) Name() string { return "competitive" }
func (o *competitiveOrder) Reset()       {}

func (o *competitiveOrder) Next(s TurnState) []int {
	if s.final() {
		return []int{s.synthesizer()}
	}
	pool := s.speakers()
	last, ok := s.lastSender(1)
	if !ok {
		return []int{pick(o.rng, pool)}
	}
	if o.rng.Float64() < 0.5 && len(pool) >= 2 {
		return sample(o.rng, pool, between(o.rng, 2, min(3, len(pool))))
	}
	if others := excluding(s, pool, last); len(others) > 0 {
		return []int{pick(o.rng, others)}
	}
	return []int{pick(o.rng, pool)}
}

// adversarialOrder stages confrontations between several voices.
type adversarialOrder struct {
	rng *rand.Rand
}

func (o *adversarialOrder) Name() string { return "adversarial" }
func (o *adversarialOrder) Reset()       {}

func (o *adversarialOrder) Next(s TurnState) []int {
	if s.final() {
		return []int{s.synthesizer()}
	}
	pool := s.speakers()
	if o.rng.Float64() < 0.4 && len(pool) >= 2 {
		return sample(o.rng, pool, between(o.rng, 2, min(3, len(pool))))
	}
	if last, ok := s.lastSender(1); ok && o.rng.Float64() < 0.7 {
		if others := excluding(s, pool, last); len(others) > 0 {
			return []int{pick(o.rng, others)}
		}
	}
	return []int{pick(o.rng, pool)}
}

// disruptiveOrder bursts into group turns every few rounds and otherwise
// jumps topics or lets the last speaker continue.
type disruptiveOrder struct {
	rng *rand.Rand
}

func (o *disruptiveOrder) Name() string { return "disruptive" }
func (o *disruptiveOrder) Reset()       {}

func (o *disruptiveOrder) Next(s TurnState) []int {
	if s.final() {
		return []int{s.synthesizer()}
	}
	pool := s.speakers()
	if s.Turn%between(o.rng, 3, 5) == 0 && len(pool) >= 2 {
		return sample(o.rng, pool, between(o.rng, 2, len(pool)))
	}
	if o.rng.Float64() < 0.6 {
		return []int{pick(o.rng, pool)}
	}
	if last, ok := s.lastSender(1); ok {
		if i, ok := indexOf(s, pool, last); ok {
			return []int{i}
		}
	}
	return []int{pick(o.rng, pool)}
}

// between returns a uniform int in [lo, hi].
func between(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo+1)
}

func pick(rng *rand.Rand, pool []int) int {
	return pool[rng.Intn(len(pool))]
}

// sample draws k distinct indices from pool.
func sample(rng *rand.Rand, pool []int, k int) []int {
	shuffled := append([]int(nil), pool...)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	if k > len(shuffled) {
		k = len(shuffled)
	}
	return shuffled[:k]
}

func excluding(s TurnState, pool []int, name string) []int {
	var out []int
	for _, i := range pool {
		if s.Agents[i] != name {
			out = append(out, i)
		}
	}
	return out
}

func indexOf(s TurnState, pool []int, name string) (int, bool) {
	for _, i := range pool {
		if s.Agents[i] == name {
			return i, true
		}
	}
	return 0, false
}
