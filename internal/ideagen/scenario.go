package ideagen

import (
	"embed"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed scenarios/*.yaml
var scenarioFS embed.FS

// AgentSpec declares one participant.
type AgentSpec struct {
	Name string `yaml:"name"`
	Role string `yaml:"role"`
}

// Scenario is a loaded simulation definition. The last agent is the
// synthesizer.
type Scenario struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Order       string      `yaml:"order"`
	MaxTurns    int         `yaml:"max_turns"`
	Agents      []AgentSpec `yaml:"agents"`
	Topic       string      `yaml:"-"`
}

// Validate checks the structural requirements of a scenario.
func (s Scenario) Validate() error {
	var problems []string
	if len(s.Agents) < 2 {
		problems = append(problems, "at least two agents are required (speakers plus a synthesizer)")
	}
	seen := make(map[string]bool, len(s.Agents))
	for i, a := range s.Agents {
		name := strings.TrimSpace(a.Name)
		if name == "" {
			problems = append(problems, fmt.Sprintf("agent %d has no name", i))
			continue
		}
		if seen[name] {
			problems = append(problems, fmt.Sprintf("duplicate agent name %q", name))
		}
		seen[name] = true
	}
	if s.MaxTurns < 1 {
		problems = append(problems, "max_turns must be >= 1")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid scenario %q: %s", s.Name, strings.Join(problems, "; "))
	}
	return nil
}

// BuiltinScenarios lists the embedded scenario names.
func BuiltinScenarios() []string {
	entries, err := scenarioFS.ReadDir("scenarios")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	sort.Strings(names)
	return names
}

// LoadScenario reads a built-in scenario by name, or a YAML file by path,
// substituting {topic} and {topic_lower} before parsing.
func LoadScenario(nameOrPath, topic string) (Scenario, error) {
	raw, err := scenarioFS.ReadFile("scenarios/" + nameOrPath + ".yaml")
	if err != nil {
		raw, err = os.ReadFile(nameOrPath)
		if err != nil {
			return Scenario{}, fmt.Errorf("scenario %q not found (built-in: %s): %w",
				nameOrPath, strings.Join(BuiltinScenarios(), ", "), err)
		}
	}
	return ParseScenario(raw, topic)
}

// ParseScenario substitutes the topic placeholders and decodes YAML.
func ParseScenario(raw []byte, topic string) (Scenario, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return Scenario{}, fmt.Errorf("topic is required")
	}
	text := strings.NewReplacer("{topic_lower}", strings.ToLower(topic), "{topic}", topic).Replace(string(raw))

	var s Scenario
	if err := yaml.Unmarshal([]byte(text), &s); err != nil {
		return Scenario{}, fmt.Errorf("parse scenario: %w", err)
	}
	s.Topic = topic
	if err := s.Validate(); err != nil {
		return Scenario{}, err
	}
	return s, nil
}
