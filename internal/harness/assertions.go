package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/kanban/internal/board"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Board    string // Compact rendering of the final board
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if e.Board != "" {
		fmt.Fprintf(&buf, "\nBoard:\n%s", e.Board)
	}
	return buf.String()
}

// EvaluateAssertions runs all assertions against b and returns a message
// for each one that failed.
func EvaluateAssertions(b *board.Board, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(b, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluate(b *board.Board, a Assertion) error {
	switch a.Type {
	case AssertColumn:
		return assertColumn(b, a)
	case AssertColumns:
		return assertColumnOrder(b, a)
	case AssertTask:
		return assertTask(b, a)
	case AssertAbsent:
		return assertAbsent(b, a)
	case AssertTaskCount:
		return assertTaskCount(b, a)
	default:
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}
}

// assertColumn checks that a column holds exactly the expected ids in
// order.
func assertColumn(b *board.Board, a Assertion) error {
	col, ok := b.Columns[a.Column]
	if !ok {
		return &AssertionError{
			Type:     AssertColumn,
			Expected: fmt.Sprintf("column %q", a.Column),
			Actual:   "column does not exist",
			Board:    render(b),
		}
	}
	if !sameIDs(col.TaskIDs, a.TaskIDs) {
		return &AssertionError{
			Type:     AssertColumn,
			Expected: fmt.Sprintf("%s = %v", a.Column, nonNil(a.TaskIDs)),
			Actual:   fmt.Sprintf("%s = %v", a.Column, nonNil(col.TaskIDs)),
			Board:    render(b),
		}
	}
	return nil
}

func assertColumnOrder(b *board.Board, a Assertion) error {
	if !sameIDs(b.ColumnOrder, a.Order) {
		return &AssertionError{
			Type:     AssertColumns,
			Expected: fmt.Sprintf("column order %v", a.Order),
			Actual:   fmt.Sprintf("column order %v", b.ColumnOrder),
		}
	}
	return nil
}

func assertTask(b *board.Board, a Assertion) error {
	task, ok := b.Tasks[a.Task]
	if !ok {
		return &AssertionError{
			Type:     AssertTask,
			Expected: fmt.Sprintf("task %q", a.Task),
			Actual:   "task does not exist",
			Board:    render(b),
		}
	}
	if a.Content != nil && task.Content != *a.Content {
		return &AssertionError{
			Type:     AssertTask,
			Expected: fmt.Sprintf("task %q content %q", a.Task, *a.Content),
			Actual:   fmt.Sprintf("content %q", task.Content),
		}
	}
	return nil
}

func assertAbsent(b *board.Board, a Assertion) error {
	if _, ok := b.Tasks[a.Task]; ok {
		return &AssertionError{
			Type:     AssertAbsent,
			Expected: fmt.Sprintf("no task %q", a.Task),
			Actual:   "task exists",
			Board:    render(b),
		}
	}
	if colID, _, ok := b.Locate(a.Task); ok {
		return &AssertionError{
			Type:     AssertAbsent,
			Expected: fmt.Sprintf("no reference to %q", a.Task),
			Actual:   fmt.Sprintf("referenced by column %s", colID),
		}
	}
	return nil
}

func assertTaskCount(b *board.Board, a Assertion) error {
	if got := b.TaskCount(); got != *a.Count {
		return &AssertionError{
			Type:     AssertTaskCount,
			Expected: fmt.Sprintf("%d tasks", *a.Count),
			Actual:   fmt.Sprintf("%d tasks", got),
			Board:    render(b),
		}
	}
	return nil
}

func sameIDs(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

// render draws b one column per line: "todo: [a b]".
func render(b *board.Board) string {
	var buf strings.Builder
	for _, id := range b.ColumnOrder {
		fmt.Fprintf(&buf, "  %s: %v\n", id, nonNil(b.Columns[id].TaskIDs))
	}
	return buf.String()
}
