// Package gesture translates inbound presentation events (form submits,
// delete clicks, drag-and-drop reports) into board transitions.
package gesture

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/bytedance/sonic"

	"github.com/roach88/kanban/internal/board"
)

// Type names an inbound event.
type Type string

const (
	TypeCreate  Type = "create"
	TypeEdit    Type = "edit"
	TypeDelete  Type = "delete"
	TypeReorder Type = "reorder"
)

// Position is a slot in a column: the column id and an index into its
// task list.
type Position struct {
	ColumnID string `json:"columnId" yaml:"columnId"`
	Index    int    `json:"index" yaml:"index"`
}

// Event is one inbound user action.
//
// For reorder events a nil Destination means the drop landed outside any
// column and nothing moves. A nil Source means the reporter does not know
// where the task is; the dispatcher looks it up.
type Event struct {
	Type        Type      `json:"type" yaml:"type"`
	ColumnID    string    `json:"columnId,omitempty" yaml:"columnId,omitempty"`
	TaskID      string    `json:"taskId,omitempty" yaml:"taskId,omitempty"`
	Content     string    `json:"content,omitempty" yaml:"content,omitempty"`
	Source      *Position `json:"source,omitempty" yaml:"source,omitempty"`
	Destination *Position `json:"destination,omitempty" yaml:"destination,omitempty"`
}

// Check reports structural problems with ev that do not depend on the
// board: an unknown type or a missing required field.
func (ev Event) Check() error {
	switch ev.Type {
	case TypeCreate:
		if ev.ColumnID == "" {
			return board.Errorf(board.CodeValidation, "create event requires columnId")
		}
	case TypeEdit, TypeDelete:
		if ev.TaskID == "" {
			return board.Errorf(board.CodeValidation, "%s event requires taskId", ev.Type)
		}
	case TypeReorder:
		if ev.TaskID == "" {
			return board.Errorf(board.CodeValidation, "reorder event requires taskId")
		}
	case "":
		return board.Errorf(board.CodeValidation, "event type is required")
	default:
		return board.Errorf(board.CodeValidation, "unknown event type %q", ev.Type)
	}
	return nil
}

// maxLineSize bounds one JSON Lines record.
const maxLineSize = 1 << 20

// ReadEvents decodes a JSON Lines stream of events. Blank lines and lines
// starting with '#' are skipped. Unknown fields are rejected.
func ReadEvents(r io.Reader) ([]Event, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var events []Event
	line := 0
	for sc.Scan() {
		line++
		text := bytes.TrimSpace(sc.Bytes())
		if len(text) == 0 || text[0] == '#' {
			continue
		}
		ev, err := decodeEvent(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		events = append(events, ev)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	return events, nil
}

// DecodeEvents decodes a JSON array of events.
func DecodeEvents(r io.Reader) ([]Event, error) {
	dec := sonic.ConfigStd.NewDecoder(r)
	dec.DisallowUnknownFields()
	events := make([]Event, 0, 4)
	if err := dec.Decode(&events); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	return events, nil
}

func decodeEvent(data []byte) (Event, error) {
	dec := sonic.ConfigStd.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var ev Event
	if err := dec.Decode(&ev); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	return ev, nil
}
