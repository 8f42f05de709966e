package ideagen

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fourAgents = []string{"A", "B", "C", "Synth"}

func TestSequentialRoundRobin(t *testing.T) {
	o, err := NewOrder("sequential", nil)
	require.NoError(t, err)

	var got []int
	for turn := 0; turn < 7; turn++ {
		got = append(got, o.Next(TurnState{Turn: turn, MaxTurns: 7, Agents: fourAgents})...)
	}
	assert.Equal(t, []int{0, 1, 2, 0, 1, 2, 3}, got)

	o.Reset()
	assert.Equal(t, []int{0}, o.Next(TurnState{Turn: 0, MaxTurns: 7, Agents: fourAgents}))
}

func TestEveryOrderGivesFinalTurnToSynthesizer(t *testing.T) {
	for _, name := range OrderNames() {
		t.Run(name, func(t *testing.T) {
			o, err := NewOrder(name, rand.New(rand.NewSource(7)))
			require.NoError(t, err)
			got := o.Next(TurnState{Turn: 9, MaxTurns: 10, Agents: fourAgents})
			assert.Equal(t, []int{3}, got)
		})
	}
}

func TestRandomOrdersNeverPickSynthesizerEarly(t *testing.T) {
	for _, name := range OrderNames() {
		if name == "sequential" {
			continue
		}
		t.Run(name, func(t *testing.T) {
			o, err := NewOrder(name, rand.New(rand.NewSource(42)))
			require.NoError(t, err)

			var history []Message
			for turn := 0; turn < 200; turn++ {
				picked := o.Next(TurnState{Turn: turn, MaxTurns: 1000, Agents: fourAgents, Messages: history})
				require.NotEmpty(t, picked)
				seen := map[int]bool{}
				for _, idx := range picked {
					assert.True(t, idx >= 0 && idx < 3, "turn %d picked %d", turn, idx)
					assert.False(t, seen[idx], "duplicate speaker in one turn")
					seen[idx] = true
					history = append(history, Message{Sender: fourAgents[idx]})
				}
			}
		})
	}
}

func TestRandomOrdersAreDeterministicForSeed(t *testing.T) {
	run := func() [][]int {
		o, err := NewOrder("chaotic", rand.New(rand.NewSource(99)))
		require.NoError(t, err)
		var out [][]int
		for turn := 0; turn < 20; turn++ {
			out = append(out, o.Next(TurnState{Turn: turn, MaxTurns: 100, Agents: fourAgents}))
		}
		return out
	}
	assert.Equal(t, run(), run())
}

func TestSingleSpeakerScenario(t *testing.T) {
	agents := []string{"Solo", "Synth"}
	for _, name := range OrderNames() {
		o, err := NewOrder(name, rand.New(rand.NewSource(1)))
		require.NoError(t, err)
		for turn := 0; turn < 10; turn++ {
			got := o.Next(TurnState{Turn: turn, MaxTurns: 11, Agents: agents, Messages: []Message{{Sender: "Solo"}}})
			assert.Equal(t, []int{0}, got, "%s turn %d", name, turn)
		}
	}
}

func TestChaosOrdersAreRegistered(t *testing.T) {
	for _, name := range []string{
		"toxic", "controlled_chaos", "debate_style", "light_chaos", "medium_chaos", "high_chaos",
		"intelligent_chaos", "interruption_chaos", "aggressive_chaos", "debate_chaos", "total_chaos",
	} {
		o, err := NewOrder(name, nil)
		require.NoError(t, err, name)
		assert.Equal(t, name, o.Name())
	}
}

func TestNoThirdConsecutiveTurnForRepeatSpeaker(t *testing.T) {
	repeat := []Message{{Sender: "C"}, {Sender: "A"}, {Sender: "A"}}
	for _, name := range []string{"controlled_chaos", "debate_style", "intelligent_chaos", "interruption_chaos"} {
		t.Run(name, func(t *testing.T) {
			o, err := NewOrder(name, rand.New(rand.NewSource(3)))
			require.NoError(t, err)
			for i := 0; i < 100; i++ {
				picked := o.Next(TurnState{Turn: 3, MaxTurns: 100, Agents: fourAgents, Messages: repeat})
				assert.NotContains(t, picked, 0)
			}
		})
	}
}

func TestToxicOverlapsAtLeastThree(t *testing.T) {
	agents := []string{"A", "B", "C", "D", "E", "F", "Synth"}
	o, err := NewOrder("toxic", rand.New(rand.NewSource(5)))
	require.NoError(t, err)

	multi := 0
	for turn := 0; turn < 200; turn++ {
		picked := o.Next(TurnState{Turn: turn, MaxTurns: 1000, Agents: agents})
		if len(picked) > 1 {
			multi++
			assert.GreaterOrEqual(t, len(picked), 3)
			assert.LessOrEqual(t, len(picked), 5)
		}
	}
	assert.InDelta(t, 120, multi, 30)
}

func TestTotalChaosCanSeatEveryone(t *testing.T) {
	agents := []string{"A", "B", "C", "D", "E", "Synth"}
	o, err := NewOrder("total_chaos", rand.New(rand.NewSource(11)))
	require.NoError(t, err)

	everyone := false
	for turn := 0; turn < 200 && !everyone; turn++ {
		everyone = len(o.Next(TurnState{Turn: turn, MaxTurns: 1000, Agents: agents})) == 5
	}
	assert.True(t, everyone)
}

func TestLightChaosMostlySingleSpeaker(t *testing.T) {
	o, err := NewOrder("light_chaos", rand.New(rand.NewSource(8)))
	require.NoError(t, err)

	single := 0
	for turn := 0; turn < 400; turn++ {
		if len(o.Next(TurnState{Turn: turn, MaxTurns: 1000, Agents: fourAgents})) == 1 {
			single++
		}
	}
	assert.InDelta(t, 340, single, 40)
}

func TestUnknownOrder(t *testing.T) {
	_, err := NewOrder("anarchic", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sequential")
}
