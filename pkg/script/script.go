// Package script runs scripted editing sessions against a scene graph and
// its history engine. Scripts are YAML documents listing steps such as add,
// set, undo and expect.
package script

import (
	"errors"
	"fmt"
	"os"

	"github.com/dshills/canvasundo/pkg/scene"
	"gopkg.in/yaml.v3"
)

// Step operations.
const (
	OpAdd    = "add"
	OpRemove = "remove"
	OpSet    = "set"
	OpBegin  = "begin"
	OpEnd    = "end"
	OpUndo   = "undo"
	OpRedo   = "redo"
	OpClear  = "clear"
	OpExpect = "expect"
)

var (
	// ErrInvalidScript is returned when a script fails validation.
	ErrInvalidScript = errors.New("invalid script")
	// ErrExpectationFailed is returned when an expect step does not hold.
	ErrExpectationFailed = errors.New("expectation failed")
)

// Script is a named sequence of editing steps.
type Script struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Step is one scripted action.
type Step struct {
	Op    string `yaml:"op"`
	ID    string `yaml:"id,omitempty"`
	Kind  string `yaml:"kind,omitempty"`
	Label string `yaml:"label,omitempty"`

	// Attrs holds literal attribute values for add and set.
	Attrs map[string]any `yaml:"attrs,omitempty"`
	// Exprs holds attribute values computed from the cell's current
	// attributes, for example "x + 50".
	Exprs map[string]string `yaml:"exprs,omitempty"`

	// Path, Equals and Exists describe an expect step. Path is a gjson path
	// into the cell's attributes.
	Path   string `yaml:"path,omitempty"`
	Equals any    `yaml:"equals,omitempty"`
	Exists *bool  `yaml:"exists,omitempty"`
}

// Parse decodes and validates a YAML script.
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScript, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadFile reads and parses a script file.
func LoadFile(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return Parse(data)
}

// Validate checks every step for a known operation and its required fields.
func (s *Script) Validate() error {
	if len(s.Steps) == 0 {
		return fmt.Errorf("%w: no steps", ErrInvalidScript)
	}
	for i, step := range s.Steps {
		if err := step.validate(); err != nil {
			return fmt.Errorf("%w: step %d: %v", ErrInvalidScript, i+1, err)
		}
	}
	return nil
}

func (st Step) validate() error {
	switch st.Op {
	case OpAdd:
		if st.Kind != "" && !scene.Kind(st.Kind).Valid() {
			return fmt.Errorf("unknown kind %q", st.Kind)
		}
		if len(st.Exprs) > 0 {
			return errors.New("add does not accept exprs")
		}
	case OpRemove:
		if st.ID == "" {
			return errors.New("remove requires id")
		}
	case OpSet:
		if st.ID == "" {
			return errors.New("set requires id")
		}
		if len(st.Attrs) == 0 && len(st.Exprs) == 0 {
			return errors.New("set requires attrs or exprs")
		}
		for k := range st.Exprs {
			if _, ok := st.Attrs[k]; ok {
				return fmt.Errorf("attribute %q given as both literal and expression", k)
			}
		}
	case OpExpect:
		if st.ID == "" {
			return errors.New("expect requires id")
		}
		if st.Path == "" && st.Exists == nil {
			return errors.New("expect requires path or exists")
		}
	case OpBegin, OpEnd, OpUndo, OpRedo, OpClear:
	case "":
		return errors.New("missing op")
	default:
		return fmt.Errorf("unknown op %q", st.Op)
	}
	return nil
}

// String describes the step for logs and errors.
func (st Step) String() string {
	if st.ID != "" {
		return st.Op + " " + st.ID
	}
	if st.Label != "" {
		return fmt.Sprintf("%s %q", st.Op, st.Label)
	}
	return st.Op
}
