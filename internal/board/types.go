package board

import "fmt"

// MaxContentLength is the upper bound on task content, in characters.
const MaxContentLength = 300

// Task is a unit of user content with a stable identity.
type Task struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// Column is a named, ordered bucket of task references.
type Column struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	TaskIDs []string `json:"taskIds"`
}

// Board is the full persisted state: tasks, columns and column order.
//
// A *Board is immutable once returned by this package. Every operation
// builds a new value instead of editing the receiver.
type Board struct {
	Tasks       map[string]Task   `json:"tasks"`
	Columns     map[string]Column `json:"columns"`
	ColumnOrder []string          `json:"columnOrder"`
}

// ColumnSpec describes one column of a Layout.
type ColumnSpec struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
}

// Layout is the ordered set of columns a board is created with.
type Layout []ColumnSpec

// DefaultLayout returns the three-column layout used when nothing else is
// configured.
func DefaultLayout() Layout {
	return Layout{
		{ID: "todo", Title: "To Do"},
		{ID: "in-progress", Title: "In Progress"},
		{ID: "done", Title: "Done"},
	}
}

// Validate checks that the layout has at least one column, that ids are
// unique and that no id or title is empty.
func (l Layout) Validate() error {
	if len(l) == 0 {
		return fmt.Errorf("layout must define at least one column")
	}
	seen := make(map[string]bool, len(l))
	for i, c := range l {
		if c.ID == "" {
			return fmt.Errorf("column[%d]: id is required", i)
		}
		if c.Title == "" {
			return fmt.Errorf("column[%d] %q: title is required", i, c.ID)
		}
		if seen[c.ID] {
			return fmt.Errorf("column[%d]: duplicate id %q", i, c.ID)
		}
		seen[c.ID] = true
	}
	return nil
}

// New creates an empty board with the columns of the given layout.
func New(layout Layout) (*Board, error) {
	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout: %w", err)
	}
	b := &Board{
		Tasks:       make(map[string]Task),
		Columns:     make(map[string]Column, len(layout)),
		ColumnOrder: make([]string, 0, len(layout)),
	}
	for _, c := range layout {
		b.Columns[c.ID] = Column{ID: c.ID, Title: c.Title, TaskIDs: []string{}}
		b.ColumnOrder = append(b.ColumnOrder, c.ID)
	}
	return b, nil
}

// Layout returns the column layout of b in display order.
func (b *Board) Layout() Layout {
	l := make(Layout, 0, len(b.ColumnOrder))
	for _, id := range b.ColumnOrder {
		l = append(l, ColumnSpec{ID: id, Title: b.Columns[id].Title})
	}
	return l
}

// Locate returns the column holding taskID and the task's index in it.
func (b *Board) Locate(taskID string) (columnID string, index int, ok bool) {
	for _, colID := range b.ColumnOrder {
		for i, id := range b.Columns[colID].TaskIDs {
			if id == taskID {
				return colID, i, true
			}
		}
	}
	return "", -1, false
}

// TaskCount returns the number of tasks on the board.
func (b *Board) TaskCount() int {
	return len(b.Tasks)
}

// Clone returns a deep copy of b.
func (b *Board) Clone() *Board {
	out := &Board{
		Tasks:       cloneTasks(b.Tasks),
		Columns:     make(map[string]Column, len(b.Columns)),
		ColumnOrder: append([]string{}, b.ColumnOrder...),
	}
	for id, c := range b.Columns {
		c.TaskIDs = append([]string{}, c.TaskIDs...)
		out.Columns[id] = c
	}
	return out
}

// Equal reports whether a and b hold the same tasks, columns and column
// order. A nil and an empty TaskIDs slice compare equal.
func Equal(a, b *Board) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if len(a.Tasks) != len(b.Tasks) || len(a.Columns) != len(b.Columns) {
		return false
	}
	if !equalStrings(a.ColumnOrder, b.ColumnOrder) {
		return false
	}
	for id, t := range a.Tasks {
		if other, ok := b.Tasks[id]; !ok || other != t {
			return false
		}
	}
	for id, c := range a.Columns {
		other, ok := b.Columns[id]
		if !ok || other.ID != c.ID || other.Title != c.Title {
			return false
		}
		if !equalStrings(c.TaskIDs, other.TaskIDs) {
			return false
		}
	}
	return true
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func cloneTasks(in map[string]Task) map[string]Task {
	out := make(map[string]Task, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	return out
}

// cloneColumns copies the column map only. TaskIDs slices stay shared and
// must be replaced, not edited, by the caller.
func cloneColumns(in map[string]Column) map[string]Column {
	out := make(map[string]Column, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
