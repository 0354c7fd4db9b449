package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/kanban/internal/board"
	"github.com/roach88/kanban/internal/gesture"
)

// Scenario defines a scripted board session.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Columns is the board layout. Empty means board.DefaultLayout.
	Columns []board.ColumnSpec `yaml:"columns,omitempty"`

	// IDs are handed out to created tasks in order. When exhausted,
	// "task-1", "task-2", ... follow.
	IDs []string `yaml:"ids,omitempty"`

	// Setup contains events that establish the initial board. Each must
	// be accepted.
	Setup []gesture.Event `yaml:"setup,omitempty"`

	// Flow contains the events under test.
	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the final board.
	Assertions []Assertion `yaml:"assertions"`
}

// FlowStep is one event and its expected outcome.
type FlowStep struct {
	Event gesture.Event `yaml:"event"`

	// Expect is one of ok, noop, validation, not_found or conflict.
	// Empty means any outcome is accepted.
	Expect string `yaml:"expect,omitempty"`
}

// Expected outcomes.
const (
	ExpectOK         = "ok"
	ExpectNoop       = "noop"
	ExpectValidation = "validation"
	ExpectNotFound   = "not_found"
	ExpectConflict   = "conflict"
)

var validExpects = map[string]bool{
	ExpectOK:         true,
	ExpectNoop:       true,
	ExpectValidation: true,
	ExpectNotFound:   true,
	ExpectConflict:   true,
}

// Assertion validates the final board.
type Assertion struct {
	// Type is one of column, columns, task, absent or task_count.
	Type string `yaml:"type"`

	// Column is the column id (used by column).
	Column string `yaml:"column,omitempty"`

	// TaskIDs is the exact expected column content (used by column).
	TaskIDs []string `yaml:"taskIds,omitempty"`

	// Order is the exact expected column order (used by columns).
	Order []string `yaml:"order,omitempty"`

	// Task is the task id (used by task and absent).
	Task string `yaml:"task,omitempty"`

	// Content is the expected task content (used by task). Nil only
	// checks existence.
	Content *string `yaml:"content,omitempty"`

	// Count is the expected number of tasks (used by task_count).
	Count *int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertColumn    = "column"
	AssertColumns   = "columns"
	AssertTask      = "task"
	AssertAbsent    = "absent"
	AssertTaskCount = "task_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// Layout returns the scenario's board layout.
func (s *Scenario) Layout() board.Layout {
	if len(s.Columns) == 0 {
		return board.DefaultLayout()
	}
	return board.Layout(s.Columns)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Columns) > 0 {
		if err := board.Layout(s.Columns).Validate(); err != nil {
			return fmt.Errorf("columns: %w", err)
		}
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, ev := range s.Setup {
		if err := ev.Check(); err != nil {
			return fmt.Errorf("setup[%d]: %w", i, err)
		}
	}

	for i, step := range s.Flow {
		if step.Event.Type == "" {
			return fmt.Errorf("flow[%d]: event type is required", i)
		}
		if step.Expect != "" && !validExpects[step.Expect] {
			return fmt.Errorf("flow[%d]: unknown expect %q", i, step.Expect)
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertColumn:
		if a.Column == "" {
			return fmt.Errorf("assertions[%d]: column is required for column", index)
		}
	case AssertColumns:
		if len(a.Order) == 0 {
			return fmt.Errorf("assertions[%d]: order is required for columns", index)
		}
	case AssertTask, AssertAbsent:
		if a.Task == "" {
			return fmt.Errorf("assertions[%d]: task is required for %s", index, a.Type)
		}
	case AssertTaskCount:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for task_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

// FindScenarios returns the .yaml and .yml files under dir, sorted. A
// non-empty filter is a glob matched against the file name without its
// extension.
func FindScenarios(dir, filter string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})
	sort.Strings(files)
	return files, err
}
