package board

import "github.com/google/uuid"

// IDGenerator produces task ids.
// Implemented by UUIDv7Generator (production) and the generators in
// internal/testutil (tests and scenarios).
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 task ids.
//
// google/uuid keeps UUIDv7 values monotonic within a process even when the
// wall clock does not advance, so two tasks created in the same millisecond
// still get distinct ids.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
