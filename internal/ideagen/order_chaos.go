package ideagen

import "math/rand"

// Chaos-flavored policies. They differ in how often several speakers
// overlap and how hard they push away from whoever spoke last.

// toxicOrder piles three to five speakers into most turns.
type toxicOrder struct {
	rng *rand.Rand
}

func (o *toxicOrder) Name() string { return "toxic" }
func (o *toxicOrder) Reset()       {}

func (o *toxicOrder) Next(s TurnState) []int {
	if s.final() {
		return []int{s.synthesizer()}
	}
	pool := s.speakers()
	if o.rng.Float64() < 0.6 && len(pool) >= 3 {
		return sample(o.rng, pool, between(o.rng, 3, min(5, len(pool))))
	}
	return []int{pick(o.rng, pool)}
}

// controlledChaosOrder never lets one agent speak three times running and
// keeps overlaps to two or three voices.
type controlledChaosOrder struct {
	rng *rand.Rand
}

func (o *controlledChaosOrder) Name() string { return "controlled_chaos" }
func (o *controlledChaosOrder) Reset()       {}

func (o *controlledChaosOrder) Next(s TurnState) []int {
	if s.final() {
		return []int{s.synthesizer()}
	}
	pool := s.speakers()
	// History only kicks in once three messages exist.
	var recent []string
	if len(s.Messages) >= 3 {
		recent = recentSenders(s, 3)
	}

	if len(recent) >= 2 && recent[0] == recent[1] {
		if others := excluding(s, pool, recent[0]); len(others) > 0 {
			if o.rng.Float64() < 0.2 && len(others) >= 2 {
				return sample(o.rng, others, between(o.rng, 2, min(3, len(others))))
			}
			return []int{pick(o.rng, others)}
		}
	}

	if len(recent) >= 1 {
		last := recent[0]
		if o.rng.Float64() < 0.15 {
			if i, ok := indexOf(s, pool, last); ok {
				return []int{i}
			}
		} else if o.rng.Float64() < 0.40 {
			others := excluding(s, pool, last)
			if len(others) >= 2 {
				return sample(o.rng, others, between(o.rng, 2, min(3, len(others))))
			}
			if len(others) > 0 {
				return []int{pick(o.rng, others)}
			}
		}
	}
	return []int{pick(o.rng, pool)}
}

// debateStyleOrder is turn-taking with a strong preference for a new voice.
type debateStyleOrder struct {
	rng *rand.Rand
}

func (o *debateStyleOrder) Name() string { return "debate_style" }
func (o *debateStyleOrder) Reset()       {}

func (o *debateStyleOrder) Next(s TurnState) []int {
	if s.final() {
		return []int{s.synthesizer()}
	}
	pool := s.speakers()
	last, ok := s.lastSender(1)
	if prev, ok2 := s.lastSender(2); ok && ok2 && prev == last {
		if others := excluding(s, pool, last); len(others) > 0 {
			return []int{pick(o.rng, others)}
		}
	}
	if ok && o.rng.Float64() < 0.7 {
		if others := excluding(s, pool, last); len(others) > 0 {
			return []int{pick(o.rng, others)}
		}
	}
	return []int{pick(o.rng, pool)}
}

// lightChaosOrder occasionally lets two or three agents overlap.
type lightChaosOrder struct {
	rng *rand.Rand
}

func (o *lightChaosOrder) Name() string { return "light_chaos" }
func (o *lightChaosOrder) Reset()       {}

func (o *lightChaosOrder) Next(s TurnState) []int {
	if s.final() {
		return []int{s.synthesizer()}
	}
	pool := s.speakers()
	if o.rng.Float64() < 0.15 && len(pool) >= 2 {
		return sample(o.rng, pool, between(o.rng, 2, min(3, len(pool))))
	}
	return []int{pick(o.rng, pool)}
}

// mediumChaosOrder overlaps three to five voices half the time and otherwise
// mostly interrupts the last speaker.
type mediumChaosOrder struct {
	rng *rand.Rand
}

func (o *mediumChaosOrder) Name() string { return "medium_chaos" }
func (o *mediumChaosOrder) Reset()       {}

func (o *mediumChaosOrder) Next(s TurnState) []int {
	if s.final() {
		return []int{s.synthesizer()}
	}
	pool := s.speakers()
	if o.rng.Float64() < 0.5 {
		if len(pool) >= 3 {
			return sample(o.rng, pool, between(o.rng, 3, min(5, len(pool))))
		}
		return append([]int(nil), pool...)
	}
	if o.rng.Float64() < 0.8 {
		if last, ok := s.lastSender(1); ok {
			if others := excluding(s, pool, last); len(others) > 0 {
				return []int{pick(o.rng, others)}
			}
		}
	}
	return []int{pick(o.rng, pool)}
}

// highChaosOrder overlaps up to six voices most turns.
type highChaosOrder struct {
	rng *rand.Rand
}

func (o *highChaosOrder) Name() string { return "high_chaos" }
func (o *highChaosOrder) Reset()       {}

func (o *highChaosOrder) Next(s TurnState) []int {
	if s.final() {
		return []int{s.synthesizer()}
	}
	pool := s.speakers()
	if o.rng.Float64() < 0.7 {
		if len(pool) >= 2 {
			hi := min(6, max(2, len(pool)/2))
			return sample(o.rng, pool, between(o.rng, 2, hi))
		}
		return []int{pick(o.rng, pool)}
	}
	if last, ok := s.lastSender(1); ok && o.rng.Float64() < 0.8 {
		if others := excluding(s, pool, last); len(others) > 0 {
			return []int{pick(o.rng, others)}
		}
	}
	return []int{pick(o.rng, pool)}
}

// intelligentChaosOrder tracks the last four senders and favors fresh voices
// answering recent context, with occasional group interruptions.
type intelligentChaosOrder struct {
	rng *rand.Rand
}

func (o *intelligentChaosOrder) Name() string { return "intelligent_chaos" }
func (o *intelligentChaosOrder) Reset()       {}

func (o *intelligentChaosOrder) Next(s TurnState) []int {
	if s.final() {
		return []int{s.synthesizer()}
	}
	pool := s.speakers()
	history := recentSenders(s, 4)
	respond := len(s.Messages) >= 2 && o.rng.Float64() < 0.4
	interrupt := len(s.Messages) >= 1 && o.rng.Float64() < 0.25

	switch {
	case interrupt:
		last, _ := s.lastSender(1)
		others := excluding(s, pool, last)
		if len(others) == 0 {
			return []int{pick(o.rng, pool)}
		}
		if o.rng.Float64() < 0.3 && len(others) >= 2 {
			return sample(o.rng, others, between(o.rng, 2, min(3, len(others))))
		}
		return []int{pick(o.rng, others)}

	case respond:
		last, _ := s.lastSender(1)
		var fresh []int
		for _, i := range excluding(s, pool, last) {
			if !contains(headOf(history, 2), s.Agents[i]) {
				fresh = append(fresh, i)
			}
		}
		if len(fresh) > 0 {
			return []int{pick(o.rng, fresh)}
		}
		if others := excluding(s, pool, last); len(others) > 0 {
			return []int{pick(o.rng, others)}
		}
		return []int{pick(o.rng, pool)}

	case len(history) >= 2 && history[0] == history[1]:
		if others := excluding(s, pool, history[0]); len(others) > 0 {
			return []int{pick(o.rng, others)}
		}
		return []int{pick(o.rng, pool)}
	}

	if o.rng.Float64() < 0.2 {
		if len(pool) < 2 {
			return []int{pick(o.rng, pool)}
		}
		var fresh []int
		for _, i := range pool {
			if !contains(headOf(history, 2), s.Agents[i]) {
				fresh = append(fresh, i)
			}
		}
		if len(fresh) < 2 {
			fresh = pool
		}
		return sample(o.rng, fresh, between(o.rng, 2, min(3, len(fresh))))
	}

	if len(history) > 0 && o.rng.Float64() < 0.7 {
		if others := excluding(s, pool, history[0]); len(others) > 0 {
			return []int{pick(o.rng, others)}
		}
	}
	return []int{pick(o.rng, pool)}
}

// interruptionChaosOrder looks at the last three messages and steers away
// from anyone dominating them.
type interruptionChaosOrder struct {
	rng *rand.Rand
}

func (o *interruptionChaosOrder) Name() string { return "interruption_chaos" }
func (o *interruptionChaosOrder) Reset()       {}

func (o *interruptionChaosOrder) Next(s TurnState) []int {
	if s.final() {
		return []int{s.synthesizer()}
	}
	pool := s.speakers()
	respondTo := func(name string) []int {
		if others := excluding(s, pool, name); len(others) > 0 {
			return []int{pick(o.rng, others)}
		}
		return []int{pick(o.rng, pool)}
	}

	recent := recentSenders(s, 3)
	switch len(recent) {
	case 0:
		return []int{pick(o.rng, pool)}
	case 1:
		if o.rng.Float64() < 0.8 {
			return respondTo(recent[0])
		}
		return []int{pick(o.rng, pool)}
	}

	last := recent[0]
	count := 0
	for _, name := range recent {
		if name == last {
			count++
		}
	}
	if count >= 2 {
		if others := excluding(s, pool, last); len(others) > 0 {
			if o.rng.Float64() < 0.15 && len(others) >= 2 {
				return sample(o.rng, others, 2)
			}
			return []int{pick(o.rng, others)}
		}
	}
	// An interruption and a direct response both come from someone else.
	if o.rng.Float64() < 0.3 || o.rng.Float64() < 0.7 {
		return respondTo(last)
	}
	return []int{pick(o.rng, pool)}
}

// aggressiveChaosOrder overlaps two to four voices half the time and
// otherwise mostly interrupts.
type aggressiveChaosOrder struct {
	rng *rand.Rand
}

func (o *aggressiveChaosOrder) Name() string { return "aggressive_chaos" }
func (o *aggressiveChaosOrder) Reset()       {}

func (o *aggressiveChaosOrder) Next(s TurnState) []int {
	if s.final() {
		return []int{s.synthesizer()}
	}
	pool := s.speakers()
	if o.rng.Float64() < 0.5 {
		if len(pool) >= 2 {
			return sample(o.rng, pool, between(o.rng, 2, min(4, len(pool))))
		}
	} else if o.rng.Float64() < 0.8 {
		if last, ok := s.lastSender(1); ok {
			if others := excluding(s, pool, last); len(others) > 0 {
				return []int{pick(o.rng, others)}
			}
		}
	}
	return []int{pick(o.rng, pool)}
}

// debateChaosOrder stages pile-ons of three or four arguers and direct
// challenges to the last speaker.
type debateChaosOrder struct {
	rng *rand.Rand
}

func (o *debateChaosOrder) Name() string { return "debate_chaos" }
func (o *debateChaosOrder) Reset()       {}

func (o *debateChaosOrder) Next(s TurnState) []int {
	if s.final() {
		return []int{s.synthesizer()}
	}
	pool := s.speakers()
	if o.rng.Float64() < 0.4 && len(pool) >= 3 {
		return sample(o.rng, pool, between(o.rng, 3, min(4, len(pool))))
	}
	if o.rng.Float64() < 0.75 {
		if last, ok := s.lastSender(1); ok {
			if others := excluding(s, pool, last); len(others) > 0 {
				return []int{pick(o.rng, others)}
			}
		}
	}
	return []int{pick(o.rng, pool)}
}

// totalChaosOrder has no turn-taking rules at all; with five or more speakers
// everyone sometimes talks at once.
type totalChaosOrder struct {
	rng *rand.Rand
}

func (o *totalChaosOrder) Name() string { return "total_chaos" }
func (o *totalChaosOrder) Reset()       {}

func (o *totalChaosOrder) Next(s TurnState) []int {
	if s.final() {
		return []int{s.synthesizer()}
	}
	pool := s.speakers()
	if o.rng.Float64() < 0.7 && len(pool) >= 2 {
		if len(pool) >= 5 {
			if o.rng.Float64() < 0.3 {
				return append([]int(nil), pool...)
			}
			return sample(o.rng, pool, between(o.rng, 3, len(pool)))
		}
		return sample(o.rng, pool, between(o.rng, 2, len(pool)))
	}
	return []int{pick(o.rng, pool)}
}

// recentSenders returns up to n senders, newest first.
func recentSenders(s TurnState, n int) []string {
	var out []string
	for back := 1; back <= n; back++ {
		name, ok := s.lastSender(back)
		if !ok {
			break
		}
		out = append(out, name)
	}
	return out
}

func headOf(names []string, n int) []string {
	if len(names) > n {
		return names[:n]
	}
	return names
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
