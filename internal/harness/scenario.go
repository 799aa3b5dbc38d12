package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/fsmjudge/internal/fsm"
	"github.com/roach88/fsmjudge/internal/judge"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Automaton is the automaton under test.
	Automaton AutomatonSource `yaml:"automaton"`

	// Checks are single-word expectations.
	Checks []Check `yaml:"checks,omitempty"`

	// Grading optionally runs the judge.
	Grading *Grading `yaml:"grading,omitempty"`

	// dir is the scenario file's directory; relative paths resolve here.
	dir string
}

// AutomatonSource is either a path to an editor JSON file or the editor
// object written inline in YAML.
type AutomatonSource struct {
	Path   string
	Inline []byte
}

// UnmarshalYAML accepts a scalar path or a mapping.
func (s *AutomatonSource) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Decode(&s.Path)
	case yaml.MappingNode:
		var raw map[string]any
		if err := node.Decode(&raw); err != nil {
			return err
		}
		data, err := json.Marshal(raw)
		if err != nil {
			return fmt.Errorf("automaton: %w", err)
		}
		s.Inline = data
		return nil
	default:
		return fmt.Errorf("line %d: automaton must be a path or a mapping", node.Line)
	}
}

// IsZero reports whether no automaton was given.
func (s AutomatonSource) IsZero() bool {
	return s.Path == "" && len(s.Inline) == 0
}

// Check is one word and its expected outcome.
type Check struct {
	Word   string `yaml:"word"`
	Expect string `yaml:"expect"`
}

// Grading runs the judge with a script and seed.
type Grading struct {
	// Script is a path to a Starlark oracle script.
	Script string `yaml:"script,omitempty"`

	// Task is a path to a CUE task file or directory; Slug picks the task.
	Task string `yaml:"task,omitempty"`
	Slug string `yaml:"slug,omitempty"`

	Seed    int64  `yaml:"seed"`
	Profile string `yaml:"profile,omitempty"`

	// Expect is the verdict kind: Ok, WrongAnswer, InvalidFSM or
	// TaskInternalError.
	Expect string `yaml:"expect"`

	// Successes optionally pins the success count.
	Successes *int `yaml:"successes,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}
	scenario.dir = filepath.Dir(path)
	return scenario, nil
}

// ParseScenario parses scenario YAML. Relative paths in the result resolve
// against the working directory.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarios loads every .yaml file in dir, in name order.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenario files in %s", dir)
	}

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

func (s *Scenario) resolve(path string) string {
	if filepath.IsAbs(path) || s.dir == "" {
		return path
	}
	return filepath.Join(s.dir, path)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Automaton.IsZero() {
		return fmt.Errorf("automaton is required")
	}

	if len(s.Checks) == 0 && s.Grading == nil {
		return fmt.Errorf("at least one check or a grading section is required")
	}

	for i, c := range s.Checks {
		if _, err := parseExpectation(c.Expect); err != nil {
			return fmt.Errorf("checks[%d]: %w", i, err)
		}
	}

	if g := s.Grading; g != nil {
		switch {
		case g.Script == "" && g.Task == "":
			return fmt.Errorf("grading: script or task is required")
		case g.Script != "" && g.Task != "":
			return fmt.Errorf("grading: script and task are mutually exclusive")
		case g.Task != "" && g.Slug == "":
			return fmt.Errorf("grading: slug is required with task")
		}
		switch judge.Kind(g.Expect) {
		case judge.KindOK, judge.KindWrongAnswer, judge.KindInvalidFSM, judge.KindTaskInternalError:
		default:
			return fmt.Errorf("grading: unknown verdict kind %q", g.Expect)
		}
		if g.Profile != "" {
			if _, err := judge.ProfileByName(g.Profile); err != nil {
				return fmt.Errorf("grading: %w", err)
			}
		}
	}

	return nil
}

// expectation is a parsed Check.Expect.
type expectation struct {
	output   fsm.Output
	validity fsm.ValidityCode // set when the automaton must be invalid
}

func parseExpectation(s string) (expectation, error) {
	switch fsm.ValidityCode(s) {
	case fsm.CodeNoEntryLinks, fsm.CodeDisjointedLink, fsm.CodeInfiniteLoop:
		return expectation{validity: fsm.ValidityCode(s)}, nil
	}
	out, err := fsm.ParseOutput(s)
	if err != nil {
		return expectation{}, fmt.Errorf("expect: %w", err)
	}
	return expectation{output: out}, nil
}
