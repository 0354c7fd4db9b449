package board

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// maxIDAttempts bounds how often CreateTask asks the generator for a new id
// when the previous one already exists on the board.
const maxIDAttempts = 8

// Rules parameterizes content validation and id generation for the
// operations that need them. Zero fields fall back to the defaults.
type Rules struct {
	// MaxContentLength caps task content, in characters after NFC
	// normalization. Values outside 1..MaxContentLength are clamped to
	// MaxContentLength.
	MaxContentLength int

	// IDs generates ids for new tasks.
	IDs IDGenerator
}

// DefaultRules returns rules with the full content limit and UUIDv7 ids.
func DefaultRules() Rules {
	return Rules{MaxContentLength: MaxContentLength, IDs: UUIDv7Generator{}}
}

// CreateTask creates a task using DefaultRules.
func CreateTask(b *Board, columnID, content string) (*Board, error) {
	return DefaultRules().CreateTask(b, columnID, content)
}

// EditTask edits a task using DefaultRules.
func EditTask(b *Board, taskID, content string) (*Board, error) {
	return DefaultRules().EditTask(b, taskID, content)
}

// CreateTask adds a task with the given content to the head of columnID.
//
// Fails with VALIDATION if the trimmed content is empty or too long, or if
// the column does not exist. Fails with CONFLICT if the generator keeps
// returning ids already present on the board.
func (r Rules) CreateTask(b *Board, columnID, content string) (*Board, error) {
	text, verr := r.normalizeContent(content)
	if verr != nil {
		verr.ColumnID = columnID
		return b, verr
	}
	col, ok := b.Columns[columnID]
	if !ok {
		return b, validationError("target column does not exist", "", columnID)
	}
	id, err := r.freshID(b)
	if err != nil {
		return b, err
	}

	next := &Board{
		Tasks:       cloneTasks(b.Tasks),
		Columns:     cloneColumns(b.Columns),
		ColumnOrder: b.ColumnOrder,
	}
	next.Tasks[id] = Task{ID: id, Content: text}
	col.TaskIDs = insertAt(col.TaskIDs, 0, id)
	next.Columns[columnID] = col
	return next, nil
}

// EditTask replaces the content of taskID. Column membership and position
// are unchanged.
//
// Fails with NOT_FOUND if the task does not exist and with VALIDATION if
// the trimmed content is empty or too long.
func (r Rules) EditTask(b *Board, taskID, content string) (*Board, error) {
	task, ok := b.Tasks[taskID]
	if !ok {
		return b, taskNotFound(taskID)
	}
	text, verr := r.normalizeContent(content)
	if verr != nil {
		verr.TaskID = taskID
		return b, verr
	}

	next := &Board{
		Tasks:       cloneTasks(b.Tasks),
		Columns:     b.Columns,
		ColumnOrder: b.ColumnOrder,
	}
	task.Content = text
	next.Tasks[taskID] = task
	return next, nil
}

// DeleteTask removes taskID from the board and from the column holding it.
//
// Fails with NOT_FOUND if the task does not exist. Unknown ids are rejected
// rather than ignored so callers can detect stale references.
func DeleteTask(b *Board, taskID string) (*Board, error) {
	if _, ok := b.Tasks[taskID]; !ok {
		return b, taskNotFound(taskID)
	}
	colID, idx, ok := b.Locate(taskID)
	if !ok {
		return b, &Error{Code: CodeConflict, Message: "task is not held by any column", TaskID: taskID}
	}

	next := &Board{
		Tasks:       cloneTasks(b.Tasks),
		Columns:     cloneColumns(b.Columns),
		ColumnOrder: b.ColumnOrder,
	}
	delete(next.Tasks, taskID)
	col := next.Columns[colID]
	col.TaskIDs = removeAt(col.TaskIDs, idx)
	next.Columns[colID] = col
	return next, nil
}

// MoveTask relocates taskID from position srcIdx of srcColID to position
// dstIdx of dstColID.
//
// Within one column the id is removed first and dstIdx is interpreted
// against the shortened sequence (list splice semantics). Across columns
// dstIdx is interpreted against the destination's original sequence.
// Moving a task onto its own position returns b itself.
//
// Errors:
//   - NOT_FOUND if either column or the task does not exist
//   - CONFLICT if the task is not at srcIdx of srcColID (stale report)
//   - VALIDATION if dstIdx is out of range
func MoveTask(b *Board, taskID, srcColID string, srcIdx int, dstColID string, dstIdx int) (*Board, error) {
	src, ok := b.Columns[srcColID]
	if !ok {
		return b, columnNotFound(srcColID)
	}
	dst, ok := b.Columns[dstColID]
	if !ok {
		return b, columnNotFound(dstColID)
	}
	if _, ok := b.Tasks[taskID]; !ok {
		return b, taskNotFound(taskID)
	}
	if srcIdx < 0 || srcIdx >= len(src.TaskIDs) || src.TaskIDs[srcIdx] != taskID {
		return b, &Error{
			Code:     CodeConflict,
			Message:  "task is not at the reported source position",
			TaskID:   taskID,
			ColumnID: srcColID,
		}
	}
	if srcColID == dstColID && srcIdx == dstIdx {
		return b, nil
	}

	next := &Board{
		Tasks:       b.Tasks,
		Columns:     cloneColumns(b.Columns),
		ColumnOrder: b.ColumnOrder,
	}
	if srcColID == dstColID {
		remaining := removeAt(src.TaskIDs, srcIdx)
		if dstIdx < 0 || dstIdx > len(remaining) {
			return b, validationError("destination index out of range", taskID, dstColID)
		}
		src.TaskIDs = insertAt(remaining, dstIdx, taskID)
		next.Columns[srcColID] = src
	} else {
		if dstIdx < 0 || dstIdx > len(dst.TaskIDs) {
			return b, validationError("destination index out of range", taskID, dstColID)
		}
		src.TaskIDs = removeAt(src.TaskIDs, srcIdx)
		dst.TaskIDs = insertAt(dst.TaskIDs, dstIdx, taskID)
		next.Columns[srcColID] = src
		next.Columns[dstColID] = dst
	}

	if err := Validate(next); err != nil {
		return b, validationError(err.Error(), taskID, dstColID)
	}
	return next, nil
}

// normalizeContent trims and NFC-normalizes content and enforces the
// length limit.
func (r Rules) normalizeContent(content string) (string, *Error) {
	if !utf8.ValidString(content) {
		return "", validationError("content is not valid UTF-8", "", "")
	}
	text := norm.NFC.String(strings.TrimSpace(content))
	if text == "" {
		return "", validationError("content must not be empty", "", "")
	}
	limit := r.MaxContentLength
	if limit <= 0 || limit > MaxContentLength {
		limit = MaxContentLength
	}
	if n := utf8.RuneCountInString(text); n > limit {
		return "", Errorf(CodeValidation, "content is %d characters, limit is %d", n, limit)
	}
	return text, nil
}

// freshID asks the generator for an id that is not on the board yet.
func (r Rules) freshID(b *Board) (string, error) {
	ids := r.IDs
	if ids == nil {
		ids = UUIDv7Generator{}
	}
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := ids.Generate()
		if id == "" {
			continue
		}
		if _, taken := b.Tasks[id]; !taken {
			return id, nil
		}
	}
	return "", Errorf(CodeConflict, "could not generate a unique task id after %d attempts", maxIDAttempts)
}

// insertAt returns a new slice with id inserted at i. ids is not modified.
func insertAt(ids []string, i int, id string) []string {
	out := make([]string, 0, len(ids)+1)
	out = append(out, ids[:i]...)
	out = append(out, id)
	return append(out, ids[i:]...)
}

// removeAt returns a new slice without the element at i. ids is not
// modified.
func removeAt(ids []string, i int) []string {
	out := make([]string, 0, len(ids)-1)
	out = append(out, ids[:i]...)
	return append(out, ids[i+1:]...)
}
