// Package runner executes a list of steps against the action registry.
package runner

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mj1618/desktop-runner/internal/locator"
)

// Step is one (action, args) tuple from a step file.
type Step struct {
	Action string   `yaml:"action" json:"action"`
	Args   []string `yaml:"args"   json:"args"`
	// Line is the 1-based source line, 0 when the step was built in code.
	Line int `yaml:"-" json:"-"`
}

// NewStep builds a step in code.
func NewStep(action string, args ...string) Step {
	return Step{Action: action, Args: args}
}

// Label renders the step for reports. Locator steps drop the kind and read
// "click - BUTTON - OK"; others join the action and its arguments.
func (s Step) Label() string {
	if len(s.Args) >= 3 {
		if kind, err := locator.ParseKind(s.Args[0]); err == nil {
			param1 := s.Args[1]
			if kind.IsTree() {
				param1 = strings.ToUpper(param1)
			}
			parts := append([]string{s.Action, param1, s.Args[2]}, s.Args[3:]...)
			return strings.Join(parts, " - ")
		}
	}
	if len(s.Args) == 0 {
		return s.Action
	}
	return s.Action + " - " + strings.Join(s.Args, " - ")
}

// LoadSteps reads a step file. "-" reads stdin.
func LoadSteps(path string) ([]Step, error) {
	if path == "-" {
		return ParseSteps(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open step file: %w", err)
	}
	defer f.Close()
	return ParseSteps(f)
}

// ParseSteps decodes a YAML list of steps. Each entry is a sequence
// [action, arg1, ...], a mapping {action: name, args: [...]}, or a
// single-key mapping {name: [args...]}. Scalars are kept as strings.
func ParseSteps(r io.Reader) ([]Step, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("no steps provided: expected a YAML list of actions")
		}
		return nil, fmt.Errorf("failed to parse YAML steps: %w", err)
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) == 1 {
		root = root.Content[0]
	}
	if root.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("line %d: expected a list of steps", root.Line)
	}
	if len(root.Content) == 0 {
		return nil, fmt.Errorf("no steps provided: expected a YAML list of actions")
	}

	steps := make([]Step, 0, len(root.Content))
	for _, n := range root.Content {
		s, err := parseStep(n)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		s.Line = n.Line
		steps = append(steps, s)
	}
	return steps, nil
}

func parseStep(n *yaml.Node) (Step, error) {
	switch n.Kind {
	case yaml.SequenceNode:
		vals, err := scalars(n.Content)
		if err != nil {
			return Step{}, err
		}
		if len(vals) == 0 {
			return Step{}, fmt.Errorf("empty step")
		}
		return Step{Action: vals[0], Args: vals[1:]}, nil

	case yaml.MappingNode:
		fields := map[string]*yaml.Node{}
		for i := 0; i+1 < len(n.Content); i += 2 {
			fields[n.Content[i].Value] = n.Content[i+1]
		}
		if action, ok := fields["action"]; ok {
			if action.Kind != yaml.ScalarNode {
				return Step{}, fmt.Errorf("action must be a string")
			}
			s := Step{Action: action.Value}
			if args, ok := fields["args"]; ok {
				vals, err := argList(args)
				if err != nil {
					return Step{}, err
				}
				s.Args = vals
			}
			return s, nil
		}
		if len(fields) != 1 {
			return Step{}, fmt.Errorf("expected exactly one action key, got %d", len(fields))
		}
		name := n.Content[0].Value
		vals, err := argList(n.Content[1])
		if err != nil {
			return Step{}, err
		}
		return Step{Action: name, Args: vals}, nil

	case yaml.ScalarNode:
		if n.Value == "" {
			return Step{}, fmt.Errorf("empty step")
		}
		return Step{Action: n.Value}, nil
	}
	return Step{}, fmt.Errorf("unsupported step form")
}

// argList accepts a sequence, a single scalar, or null.
func argList(n *yaml.Node) ([]string, error) {
	switch n.Kind {
	case yaml.SequenceNode:
		return scalars(n.Content)
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return nil, nil
		}
		return []string{n.Value}, nil
	}
	return nil, fmt.Errorf("arguments must be a list of scalars")
}

func scalars(nodes []*yaml.Node) ([]string, error) {
	out := make([]string, 0, len(nodes))
	for _, c := range nodes {
		if c.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("arguments must be scalars")
		}
		out = append(out, c.Value)
	}
	return out, nil
}
