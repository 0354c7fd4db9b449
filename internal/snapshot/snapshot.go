// Package snapshot encodes and decodes the persisted form of a board.
//
// A snapshot is one JSON value:
//
//	{"version":1,"board":{"tasks":{...},"columns":{...},"columnOrder":[...]}}
//
// Snapshots written before versioning existed are the bare board object
// with no envelope. Decode treats a value without a "version" field as
// version 0 and migrates it forward. Every decoded board is checked against
// the board invariants and the task content rules before it is returned.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/kanban/internal/board"
)

// CurrentVersion is the version written by Encode.
//
// Version history:
// 0 - bare board object, no envelope
// 1 - {"version":1,"board":...} envelope
const CurrentVersion = 1

// ErrUnsupportedVersion is returned for snapshots written by a newer
// release.
var ErrUnsupportedVersion = errors.New("unsupported snapshot version")

// ErrCorrupt is returned when a snapshot decodes but violates the board
// invariants.
var ErrCorrupt = errors.New("corrupt snapshot")

type envelope struct {
	Version int             `json:"version"`
	Board   json.RawMessage `json:"board"`
}

type probe struct {
	Version *int `json:"version"`
}

// Encode serializes b at CurrentVersion. The board part uses the
// canonical encoding, so equal boards produce identical snapshots.
func Encode(b *board.Board) ([]byte, error) {
	data, err := board.MarshalCanonical(b)
	if err != nil {
		return nil, fmt.Errorf("encode board: %w", err)
	}
	// Built by hand: json.Marshal would re-escape <, > and & inside the
	// canonical board bytes.
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `{"version":%d,"board":`, CurrentVersion)
	buf.Write(data)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Decode parses a snapshot of any known version and returns the board it
// holds.
func Decode(data []byte) (*board.Board, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty snapshot", ErrCorrupt)
	}

	var p probe
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	version := 0
	if p.Version != nil {
		version = *p.Version
	}
	if version < 0 || version > CurrentVersion {
		return nil, fmt.Errorf("%w: %d (this build reads up to %d)", ErrUnsupportedVersion, version, CurrentVersion)
	}

	raw, err := migrate(data, version)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	b, err := decodeBoard(env.Board)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// migrate upgrades data from version to CurrentVersion, one step at a time.
func migrate(data []byte, version int) ([]byte, error) {
	if version < 1 {
		upgraded, err := migrateToV1(data)
		if err != nil {
			return nil, err
		}
		data = upgraded
	}
	return data, nil
}

// migrateToV1 wraps a bare board object in the version 1 envelope.
func migrateToV1(data []byte) ([]byte, error) {
	out, err := json.Marshal(envelope{Version: 1, Board: json.RawMessage(data)})
	if err != nil {
		return nil, fmt.Errorf("migrate to v1: %w", err)
	}
	return out, nil
}

func decodeBoard(raw json.RawMessage) (*board.Board, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, fmt.Errorf("%w: missing board", ErrCorrupt)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var b board.Board
	if err := dec.Decode(&b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	normalize(&b)
	if len(b.ColumnOrder) == 0 {
		return nil, fmt.Errorf("%w: board has no columns", ErrCorrupt)
	}
	if err := board.Validate(&b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if err := board.ValidateContent(&b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return &b, nil
}

// normalize replaces nil maps and slices left by absent JSON fields with
// empty ones.
func normalize(b *board.Board) {
	if b.Tasks == nil {
		b.Tasks = make(map[string]board.Task)
	}
	if b.Columns == nil {
		b.Columns = make(map[string]board.Column)
	}
	if b.ColumnOrder == nil {
		b.ColumnOrder = []string{}
	}
	for id, c := range b.Columns {
		if c.TaskIDs == nil {
			c.TaskIDs = []string{}
			b.Columns[id] = c
		}
	}
}
