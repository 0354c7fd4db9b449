// Package harness runs board scenarios: scripted sequences of inbound
// events with expected outcomes and assertions on the final board.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: reorder_across_columns
//	description: "Dragging a card into another column inserts it there"
//	columns:                       # optional, defaults to To Do/In Progress/Done
//	  - {id: todo, title: To Do}
//	  - {id: done, title: Done}
//	ids: [a, b, c]                 # optional ids handed out to created tasks
//	setup:                         # events that must succeed
//	  - {type: create, columnId: todo, content: "write docs"}
//	flow:
//	  - event: {type: reorder, taskId: a, source: {columnId: todo, index: 0}, destination: {columnId: done, index: 0}}
//	    expect: ok
//	assertions:
//	  - {type: column, column: done, taskIds: [a]}
//	  - {type: task, task: a, content: "write docs"}
//	  - {type: task_count, count: 1}
//
// # Expected Outcomes
//
//   - ok: the event changed the board
//   - noop: the event was accepted and changed nothing
//   - validation, not_found, conflict: the event was rejected with that code
//
// # Assertion Types
//
//   - column: the column holds exactly taskIds, in order
//   - columns: the board's column order is exactly order
//   - task: the task exists with the given content
//   - absent: the task does not exist
//   - task_count: the board holds exactly count tasks
//
// # Deterministic Runs
//
// Each run uses a fresh in-memory store, ids from the scenario's ids list
// (then "task-1", "task-2", ...) and a logical clock for trace sequence
// numbers, so traces are byte-for-byte reproducible for golden comparison.
// After every flow step the board invariants are checked, and at the end
// the board is reloaded from the store and compared with the live one.
package harness
