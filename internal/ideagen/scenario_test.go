package ideagen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinScenarios(t *testing.T) {
	names := BuiltinScenarios()
	assert.Equal(t, []string{"horizontal_debate", "vertical_collaboration"}, names)

	for _, name := range names {
		s, err := LoadScenario(name, "Graph Neural Networks")
		require.NoError(t, err, name)
		assert.Equal(t, name, s.Name)
		assert.Equal(t, "Graph Neural Networks", s.Topic)
		assert.GreaterOrEqual(t, len(s.Agents), 2)
		_, err = NewOrder(s.Order, nil)
		assert.NoError(t, err, "scenario %s uses an unknown order", name)
		for _, a := range s.Agents {
			assert.NotContains(t, a.Role, "{topic")
		}
	}
}

func TestScenarioTopicSubstitution(t *testing.T) {
	s, err := LoadScenario("vertical_collaboration", "Protein Folding")
	require.NoError(t, err)

	assert.Contains(t, s.Description, "Protein Folding")
	assert.Contains(t, s.Agents[2].Role, "protein folding")
	assert.Equal(t, "Idea Synthesizer", s.Agents[len(s.Agents)-1].Name)
}

func TestLoadScenarioFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pair.yaml")
	raw := "name: pair\norder: chaotic\nmax_turns: 3\nagents:\n  - name: A\n    role: talks about {topic}\n  - name: S\n    role: sums up\n"
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	s, err := LoadScenario(path, "caching")
	require.NoError(t, err)
	assert.Equal(t, "pair", s.Name)
	assert.Equal(t, "talks about caching", s.Agents[0].Role)
}

func TestLoadScenarioUnknown(t *testing.T) {
	_, err := LoadScenario("no_such_scenario", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vertical_collaboration")
}

func TestParseScenarioValidation(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"one agent", "name: s\nmax_turns: 2\nagents:\n  - name: A\n", "at least two agents"},
		{"duplicate", "name: s\nmax_turns: 2\nagents:\n  - name: A\n  - name: A\n", "duplicate agent name"},
		{"unnamed", "name: s\nmax_turns: 2\nagents:\n  - role: r\n  - name: B\n", "has no name"},
		{"no turns", "name: s\nagents:\n  - name: A\n  - name: B\n", "max_turns"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.raw), "topic")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := ParseScenario([]byte("name: s"), "  ")
	assert.EqualError(t, err, "topic is required")
}
