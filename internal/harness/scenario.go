package harness

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance scenario: an ordered command flow
// plus the expectations on each step.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden
	// file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// Steps is the command flow, executed in order.
	Steps []Step `yaml:"steps"`
}

// Step is one command invocation.
//
// As captures the generated aggregate id under an alias; later steps
// reference it through fields like "group" or "question". Command
// arguments live in the remaining fields; unused ones stay empty.
type Step struct {
	// Command names the operation to run (see harness.go for the
	// supported set).
	Command string `yaml:"command"`

	// As stores the resulting aggregate id under this alias.
	As string `yaml:"as,omitempty"`

	// ExpectError asserts that the command is rejected with an error
	// containing this substring.
	ExpectError string `yaml:"expect_error,omitempty"`

	// Group and Question reference aliases (or raw ids) of earlier
	// steps.
	Group    string `yaml:"group,omitempty"`
	Question string `yaml:"question,omitempty"`

	// TargetGroup is the destination of a move.
	TargetGroup string `yaml:"target_group,omitempty"`

	Name    string   `yaml:"name,omitempty"`
	Text    string   `yaml:"text,omitempty"`
	Options []string `yaml:"options,omitempty"`

	AllowMultipleResponses bool `yaml:"allow_multiple_responses,omitempty"`

	ParticipantName  string `yaml:"participant_name,omitempty"`
	SelectedOptionID string `yaml:"selected_option_id,omitempty"`
	Comment          string `yaml:"comment,omitempty"`
	ClientID         string `yaml:"client_id,omitempty"`

	ConnectionID string `yaml:"connection_id,omitempty"`

	NewOrder *int `yaml:"new_order,omitempty"`
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &s, nil
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("at least one step is required")
	}
	for i, step := range s.Steps {
		if step.Command == "" {
			return fmt.Errorf("step %d: command is required", i)
		}
	}
	return nil
}
