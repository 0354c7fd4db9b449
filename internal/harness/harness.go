package harness

import (
	"context"
	"fmt"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/roach88/kanban/internal/board"
	"github.com/roach88/kanban/internal/gesture"
	"github.com/roach88/kanban/internal/session"
	"github.com/roach88/kanban/internal/store"
	"github.com/roach88/kanban/internal/testutil"
)

// Harness is the scenario execution engine.
type Harness struct {
	kv         *store.Memory
	session    *session.Manager
	dispatcher *gesture.Dispatcher
	clock      *testutil.DeterministicClock
	logger     *log.Logger
}

// Run executes a scenario and returns the result.
//
// Execution flow:
// 1. Open a session over a fresh in-memory store
// 2. Dispatch setup events, failing the run if any is rejected
// 3. Dispatch flow events, comparing outcomes with expect clauses
// 4. Reload the board from the store and compare with the live board
// 5. Evaluate assertions against the final board
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()

	logger := log.New()
	logger.SetOutput(io.Discard)

	kv := store.NewMemory()
	m, err := session.Open(ctx, kv, scenario.Layout(),
		session.WithRules(board.Rules{IDs: newScriptedIDs(scenario.IDs)}),
		session.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}

	h := &Harness{
		kv:         kv,
		session:    m,
		dispatcher: gesture.NewDispatcher(m, logger),
		clock:      testutil.NewDeterministicClock(),
		logger:     logger,
	}

	result := NewResult()
	if err := h.executeSetup(ctx, scenario.Setup, result); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}

	h.executeFlow(ctx, scenario.Flow, result)

	final := m.Board()
	result.Board = final

	if err := h.checkPersisted(ctx, final); err != nil {
		result.AddError(err.Error())
	}

	for _, msg := range EvaluateAssertions(final, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

// executeSetup dispatches setup events; any rejection aborts the run.
func (h *Harness) executeSetup(ctx context.Context, setup []gesture.Event, result *Result) error {
	for i, ev := range setup {
		out, err := h.dispatcher.Dispatch(ctx, ev)
		if err != nil {
			return fmt.Errorf("setup step %d (%s): %w", i, ev.Type, err)
		}
		result.AddTrace(h.clock.Next(), "setup", ev, outcomeOf(out, nil), out.TaskID)
	}
	return nil
}

// executeFlow dispatches flow events and records mismatched outcomes and
// invariant violations as errors.
func (h *Harness) executeFlow(ctx context.Context, flow []FlowStep, result *Result) {
	for i, step := range flow {
		before := h.session.Board()
		out, err := h.dispatcher.Dispatch(ctx, step.Event)
		outcome := outcomeOf(out, err)
		result.AddTrace(h.clock.Next(), "flow", step.Event, outcome, out.TaskID)

		if step.Expect != "" && step.Expect != outcome {
			msg := fmt.Sprintf("flow[%d] %s: expected %s, got %s", i, step.Event.Type, step.Expect, outcome)
			if err != nil {
				msg += fmt.Sprintf(" (%v)", err)
			}
			result.AddError(msg)
		}

		if err != nil && out.Board != before {
			result.AddError(fmt.Sprintf("flow[%d] %s: rejected event changed the board", i, step.Event.Type))
		}

		if verr := board.Validate(h.session.Board()); verr != nil {
			result.AddError(fmt.Sprintf("flow[%d] %s: invariant violated: %v", i, step.Event.Type, verr))
		}
	}
}

// checkPersisted reloads the board from the store and compares it with the
// live board.
func (h *Harness) checkPersisted(ctx context.Context, live *board.Board) error {
	reloaded, err := session.Open(ctx, h.kv, board.DefaultLayout(), session.WithLogger(h.logger))
	if err != nil {
		return fmt.Errorf("reload from store: %v", err)
	}
	if !reloaded.Rehydrated() {
		// Nothing was ever written: only an untouched board may be live.
		if live.TaskCount() == 0 {
			return nil
		}
		return fmt.Errorf("reload from store: no board was persisted")
	}
	if !board.Equal(live, reloaded.Board()) {
		return fmt.Errorf("persisted board differs from live board")
	}
	return nil
}

// outcomeOf maps a dispatch result to an expect value.
func outcomeOf(out gesture.Outcome, err error) string {
	if err != nil {
		if code := board.CodeOf(err); code != "" {
			return strings.ToLower(string(code))
		}
		return "error"
	}
	if out.Applied {
		return ExpectOK
	}
	return ExpectNoop
}

// scriptedIDs hands out a fixed list of ids, then falls back to a
// sequence.
type scriptedIDs struct {
	ids      []string
	fallback *testutil.SequenceIDGenerator
}

func newScriptedIDs(ids []string) *scriptedIDs {
	return &scriptedIDs{
		ids:      append([]string(nil), ids...),
		fallback: testutil.NewSequenceIDGenerator("task"),
	}
}

func (g *scriptedIDs) Generate() string {
	if len(g.ids) > 0 {
		id := g.ids[0]
		g.ids = g.ids[1:]
		return id
	}
	return g.fallback.Generate()
}
