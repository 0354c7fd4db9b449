package gesture

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/roach88/kanban/internal/board"
)

// Target is the board owner events are applied to. *session.Manager
// implements it.
type Target interface {
	Board() *board.Board
	CreateTask(ctx context.Context, columnID, content string) (*board.Board, error)
	EditTask(ctx context.Context, taskID, content string) (*board.Board, error)
	DeleteTask(ctx context.Context, taskID string) (*board.Board, error)
	MoveTask(ctx context.Context, taskID, srcColID string, srcIdx int, dstColID string, dstIdx int) (*board.Board, error)
}

// Outcome is the result of one dispatched event.
type Outcome struct {
	// Board is the current board after the event.
	Board *board.Board

	// Applied is false when the event left the board unchanged, either
	// because it was rejected or because it was a no-op.
	Applied bool

	// TaskID is the task the event acted on. For create it is the new id.
	TaskID string
}

// Dispatcher applies events to a Target.
type Dispatcher struct {
	target Target
	logger log.FieldLogger
}

// NewDispatcher returns a dispatcher for target. A nil logger uses the
// logrus standard logger.
func NewDispatcher(target Target, logger log.FieldLogger) *Dispatcher {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Dispatcher{target: target, logger: logger}
}

// Dispatch applies ev. Domain rejections are returned as *board.Error and
// leave the board unchanged. When the target reports a persistence error
// the outcome still carries the new board.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) (Outcome, error) {
	before := d.target.Board()
	if err := ev.Check(); err != nil {
		return Outcome{Board: before, TaskID: ev.TaskID}, err
	}

	var (
		after  *board.Board
		err    error
		taskID = ev.TaskID
	)
	switch ev.Type {
	case TypeCreate:
		after, err = d.target.CreateTask(ctx, ev.ColumnID, ev.Content)
		if after != nil && after != before {
			if ids := after.Columns[ev.ColumnID].TaskIDs; len(ids) > 0 {
				taskID = ids[0]
			}
		}
	case TypeEdit:
		after, err = d.target.EditTask(ctx, ev.TaskID, ev.Content)
	case TypeDelete:
		after, err = d.target.DeleteTask(ctx, ev.TaskID)
	case TypeReorder:
		after, err = d.reorder(ctx, before, ev)
	}

	out := Outcome{Board: after, Applied: after != before, TaskID: taskID}
	if out.Board == nil {
		out.Board = before
	}
	entry := d.logger.WithFields(log.Fields{"event": string(ev.Type), "task": taskID})
	if err != nil {
		entry.WithError(err).Debug("event not applied cleanly")
	} else {
		entry.WithField("applied", out.Applied).Debug("event dispatched")
	}
	return out, err
}

func (d *Dispatcher) reorder(ctx context.Context, before *board.Board, ev Event) (*board.Board, error) {
	if ev.Destination == nil {
		return before, nil
	}
	src := ev.Source
	if src == nil {
		colID, idx, ok := before.Locate(ev.TaskID)
		if !ok {
			return before, &board.Error{Code: board.CodeNotFound, Message: "task does not exist", TaskID: ev.TaskID}
		}
		src = &Position{ColumnID: colID, Index: idx}
	}
	return d.target.MoveTask(ctx, ev.TaskID, src.ColumnID, src.Index, ev.Destination.ColumnID, ev.Destination.Index)
}

// DispatchAll applies events in order and stops at the first error. It
// returns the outcomes of the events that were dispatched, including the
// failing one.
func (d *Dispatcher) DispatchAll(ctx context.Context, events []Event) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(events))
	for i, ev := range events {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		out, err := d.Dispatch(ctx, ev)
		outcomes = append(outcomes, out)
		if err != nil {
			return outcomes, fmt.Errorf("event %d (%s): %w", i, ev.Type, err)
		}
	}
	return outcomes, nil
}
