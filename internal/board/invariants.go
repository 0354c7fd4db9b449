package board

import "fmt"

// Validate checks the three structural invariants of b and returns an
// *InvariantError describing the first violation found.
func Validate(b *Board) error {
	if b == nil {
		return &InvariantError{Invariant: 3, Message: "board is nil"}
	}

	// Invariant 3: ColumnOrder is a permutation of Columns keys.
	seenCols := make(map[string]bool, len(b.ColumnOrder))
	for _, id := range b.ColumnOrder {
		if seenCols[id] {
			return &InvariantError{Invariant: 3, Message: fmt.Sprintf("column %q listed twice in column order", id)}
		}
		col, ok := b.Columns[id]
		if !ok {
			return &InvariantError{Invariant: 3, Message: fmt.Sprintf("column order references unknown column %q", id)}
		}
		if col.ID != id {
			return &InvariantError{Invariant: 3, Message: fmt.Sprintf("column keyed %q carries id %q", id, col.ID)}
		}
		seenCols[id] = true
	}
	if len(seenCols) != len(b.Columns) {
		for id := range b.Columns {
			if !seenCols[id] {
				return &InvariantError{Invariant: 3, Message: fmt.Sprintf("column %q missing from column order", id)}
			}
		}
	}

	// Invariants 1 and 2: every referenced id exists, and appears once.
	owner := make(map[string]string, len(b.Tasks))
	for _, colID := range b.ColumnOrder {
		for _, taskID := range b.Columns[colID].TaskIDs {
			if _, ok := b.Tasks[taskID]; !ok {
				return &InvariantError{Invariant: 1, Message: fmt.Sprintf("column %q references unknown task %q", colID, taskID)}
			}
			if prev, dup := owner[taskID]; dup {
				return &InvariantError{Invariant: 2, Message: fmt.Sprintf("task %q appears in both %q and %q", taskID, prev, colID)}
			}
			owner[taskID] = colID
		}
	}
	if len(owner) != len(b.Tasks) {
		for id := range b.Tasks {
			if _, ok := owner[id]; !ok {
				return &InvariantError{Invariant: 2, Message: fmt.Sprintf("task %q is not in any column", id)}
			}
		}
	}

	for id, t := range b.Tasks {
		if t.ID != id {
			return &InvariantError{Invariant: 1, Message: fmt.Sprintf("task keyed %q carries id %q", id, t.ID)}
		}
	}

	return nil
}

// ValidateContent checks every task's content against the rules CreateTask
// and EditTask enforce: non-empty after trimming and at most
// MaxContentLength characters. It reports the first offending task in
// display order as a VALIDATION *Error. Call it after Validate.
func ValidateContent(b *Board) error {
	if b == nil {
		return Errorf(CodeValidation, "board is nil")
	}
	var r Rules
	for _, colID := range b.ColumnOrder {
		for _, taskID := range b.Columns[colID].TaskIDs {
			if _, err := r.normalizeContent(b.Tasks[taskID].Content); err != nil {
				err.TaskID = taskID
				err.ColumnID = colID
				return err
			}
		}
	}
	return nil
}
