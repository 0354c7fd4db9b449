// Package session owns the single current board of a running process.
//
// A Manager holds the board, applies the board transitions to it one at a
// time, and writes a snapshot to a store.KV after every transition that
// changed the board. The in-memory board is authoritative: a failed write
// leaves the new board current and is reported as a *PersistError.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"

	"github.com/roach88/kanban/internal/board"
	"github.com/roach88/kanban/internal/snapshot"
	"github.com/roach88/kanban/internal/store"
)

// DefaultKey is the store key the board snapshot lives under.
const DefaultKey = "kanban-board"

// PersistError reports that a transition was applied in memory but the
// snapshot could not be written.
type PersistError struct {
	Key string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist board under %q: %v", e.Key, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// IsPersistError reports whether err is or wraps a *PersistError.
func IsPersistError(err error) bool {
	var pe *PersistError
	return errors.As(err, &pe)
}

// Manager serializes board transitions and persists their results.
type Manager struct {
	mu      sync.Mutex // serializes writers
	current atomic.Pointer[board.Board]

	kv     store.KV
	key    string
	rules  board.Rules
	logger log.FieldLogger

	savedFingerprint string
	rehydrated       bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithRules sets the rules used for create and edit.
func WithRules(r board.Rules) Option {
	return func(m *Manager) { m.rules = r }
}

// WithKey sets the store key. Empty keeps DefaultKey.
func WithKey(key string) Option {
	return func(m *Manager) {
		if key != "" {
			m.key = key
		}
	}
}

// WithLogger sets the logger. Defaults to the logrus standard logger.
func WithLogger(l log.FieldLogger) Option {
	return func(m *Manager) { m.logger = l }
}

// Open rehydrates the board stored under the manager's key. When nothing
// is stored yet, it starts from an empty board built from layout; that
// board is not written until the first transition or an explicit Save.
func Open(ctx context.Context, kv store.KV, layout board.Layout, opts ...Option) (*Manager, error) {
	m := &Manager{
		kv:     kv,
		key:    DefaultKey,
		rules:  board.DefaultRules(),
		logger: log.StandardLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}

	data, err := kv.Get(ctx, m.key)
	switch {
	case errors.Is(err, store.ErrNotFound):
		b, err := board.New(layout)
		if err != nil {
			return nil, fmt.Errorf("build initial board: %w", err)
		}
		m.current.Store(b)
		m.logger.WithField("key", m.key).Debug("no stored board, starting empty")
		return m, nil
	case err != nil:
		return nil, fmt.Errorf("load board %q: %w", m.key, err)
	}

	b, err := snapshot.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("load board %q: %w", m.key, err)
	}
	fp, err := board.Fingerprint(b)
	if err != nil {
		return nil, fmt.Errorf("fingerprint board: %w", err)
	}
	m.current.Store(b)
	m.savedFingerprint = fp
	m.rehydrated = true
	m.logger.WithFields(log.Fields{"key": m.key, "tasks": b.TaskCount()}).Debug("rehydrated board")
	return m, nil
}

// Board returns the current board. The result must be treated as
// read-only; it is shared with other readers.
func (m *Manager) Board() *board.Board {
	return m.current.Load()
}

// Rehydrated reports whether Open found a stored board.
func (m *Manager) Rehydrated() bool {
	return m.rehydrated
}

// Key returns the store key the board is persisted under.
func (m *Manager) Key() string {
	return m.key
}

// Rules returns the rules applied to create and edit.
func (m *Manager) Rules() board.Rules {
	return m.rules
}

// CreateTask adds a task to the top of columnID.
func (m *Manager) CreateTask(ctx context.Context, columnID, content string) (*board.Board, error) {
	return m.apply(ctx, "create", func(b *board.Board) (*board.Board, error) {
		return m.rules.CreateTask(b, columnID, content)
	})
}

// EditTask replaces the content of taskID.
func (m *Manager) EditTask(ctx context.Context, taskID, content string) (*board.Board, error) {
	return m.apply(ctx, "edit", func(b *board.Board) (*board.Board, error) {
		return m.rules.EditTask(b, taskID, content)
	})
}

// DeleteTask removes taskID.
func (m *Manager) DeleteTask(ctx context.Context, taskID string) (*board.Board, error) {
	return m.apply(ctx, "delete", func(b *board.Board) (*board.Board, error) {
		return board.DeleteTask(b, taskID)
	})
}

// MoveTask moves taskID from (srcColID, srcIdx) to (dstColID, dstIdx).
func (m *Manager) MoveTask(ctx context.Context, taskID, srcColID string, srcIdx int, dstColID string, dstIdx int) (*board.Board, error) {
	return m.apply(ctx, "move", func(b *board.Board) (*board.Board, error) {
		return board.MoveTask(b, taskID, srcColID, srcIdx, dstColID, dstIdx)
	})
}

// Replace swaps in b wholesale after checking the board invariants.
func (m *Manager) Replace(ctx context.Context, b *board.Board) (*board.Board, error) {
	return m.apply(ctx, "replace", func(cur *board.Board) (*board.Board, error) {
		if b == nil || len(b.ColumnOrder) == 0 {
			return cur, board.Errorf(board.CodeValidation, "replacement board has no columns")
		}
		if err := board.Validate(b); err != nil {
			return cur, board.Errorf(board.CodeValidation, "replacement board: %v", err)
		}
		if err := board.ValidateContent(b); err != nil {
			return cur, err
		}
		return b.Clone(), nil
	})
}

// Save writes the current board if it differs from the last written one.
func (m *Manager) Save(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.persist(ctx, m.current.Load())
}

func (m *Manager) apply(ctx context.Context, op string, fn func(*board.Board) (*board.Board, error)) (*board.Board, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur := m.current.Load()
	next, err := fn(cur)
	if err != nil {
		m.logger.WithError(err).WithFields(log.Fields{
			"op":   op,
			"code": string(board.CodeOf(err)),
		}).Debug("transition rejected")
		return cur, err
	}
	if next == cur {
		m.logger.WithField("op", op).Debug("transition was a no-op")
		return cur, nil
	}

	m.current.Store(next)
	m.logger.WithFields(log.Fields{"op": op, "tasks": next.TaskCount()}).Debug("transition applied")

	if err := m.persist(ctx, next); err != nil {
		return next, err
	}
	return next, nil
}

// persist must be called with mu held.
func (m *Manager) persist(ctx context.Context, b *board.Board) error {
	fp, err := board.Fingerprint(b)
	if err != nil {
		return m.persistFailed(err)
	}
	if fp == m.savedFingerprint {
		return nil
	}
	data, err := snapshot.Encode(b)
	if err != nil {
		return m.persistFailed(err)
	}
	if err := m.kv.Put(ctx, m.key, data); err != nil {
		return m.persistFailed(err)
	}
	m.savedFingerprint = fp
	return nil
}

func (m *Manager) persistFailed(err error) error {
	m.logger.WithError(err).WithField("key", m.key).Error("failed to persist board")
	return &PersistError{Key: m.key, Err: err}
}
