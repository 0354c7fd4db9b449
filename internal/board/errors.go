package board

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes a rejected operation.
type ErrorCode string

const (
	// CodeValidation: empty or oversized content, unknown column on create,
	// destination index out of range.
	CodeValidation ErrorCode = "VALIDATION"

	// CodeNotFound: the referenced task or column does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeConflict: a reorder report that is inconsistent with the board,
	// typically a stale drag snapshot.
	CodeConflict ErrorCode = "CONFLICT"
)

// Error is returned by every board operation that rejects its arguments.
// The board passed to the operation is left untouched.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// TaskID identifies the affected task, if any.
	TaskID string

	// ColumnID identifies the affected column, if any.
	ColumnID string
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.TaskID != "" && e.ColumnID != "":
		return fmt.Sprintf("%s: %s (task=%s, column=%s)", e.Code, e.Message, e.TaskID, e.ColumnID)
	case e.TaskID != "":
		return fmt.Sprintf("%s: %s (task=%s)", e.Code, e.Message, e.TaskID)
	case e.ColumnID != "":
		return fmt.Sprintf("%s: %s (column=%s)", e.Code, e.Message, e.ColumnID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Errorf builds an *Error with a formatted message.
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the code of the first *Error in err's chain, or "" if
// there is none.
func CodeOf(err error) ErrorCode {
	var be *Error
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

// IsValidation reports whether err is a VALIDATION error.
func IsValidation(err error) bool {
	return CodeOf(err) == CodeValidation
}

// IsNotFound reports whether err is a NOT_FOUND error.
func IsNotFound(err error) bool {
	return CodeOf(err) == CodeNotFound
}

// IsConflict reports whether err is a CONFLICT error.
func IsConflict(err error) bool {
	return CodeOf(err) == CodeConflict
}

func validationError(message, taskID, columnID string) *Error {
	return &Error{Code: CodeValidation, Message: message, TaskID: taskID, ColumnID: columnID}
}

func taskNotFound(taskID string) *Error {
	return &Error{Code: CodeNotFound, Message: "task does not exist", TaskID: taskID}
}

func columnNotFound(columnID string) *Error {
	return &Error{Code: CodeNotFound, Message: "column does not exist", ColumnID: columnID}
}

// InvariantError reports a board that violates one of the three structural
// invariants. It is produced by Validate.
type InvariantError struct {
	// Invariant is 1, 2 or 3 (see package documentation).
	Invariant int
	Message   string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant %d violated: %s", e.Invariant, e.Message)
}
