// Package board implements the kanban board state manager.
//
// A Board is a normalized value:
//   - Tasks: id -> Task
//   - Columns: id -> Column, each holding the ordered task ids it shows
//   - ColumnOrder: the left-to-right order of the columns
//
// # Invariants
//
//  1. Every id in every column's TaskIDs is a key of Tasks.
//  2. Every key of Tasks appears in exactly one column's TaskIDs, once.
//  3. ColumnOrder is a permutation of the Columns keys with no duplicates.
//
// Validate checks all three.
//
// # Operations
//
// CreateTask, EditTask, DeleteTask and MoveTask are pure functions of
// (board, arguments). They never modify their input: a successful call
// returns a new *Board that shares untouched columns with the old one, and
// a failed call returns the input unchanged together with an *Error.
// Callers must therefore treat a *Board as immutable.
//
// Errors carry one of three codes:
//   - VALIDATION: empty or oversized content, unknown target column on
//     create, out-of-range destination index
//   - NOT_FOUND: the referenced task or column does not exist
//   - CONFLICT: a reorder report that no longer matches the board
//
// # Identity
//
// Task ids come from an IDGenerator. Production code uses UUIDv7Generator,
// which is time-ordered and monotonic within a process; CreateTask still
// checks the board for collisions before accepting an id.
package board
