package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kanban/internal/board"
)

const (
	scenarioDir = "testdata/scenarios"
	goldenDir   = "testdata/scenarios/golden"
)

func TestScenarios_Golden(t *testing.T) {
	files, err := FindScenarios(scenarioDir, "")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		scenario, err := LoadScenario(file)
		require.NoError(t, err, file)

		t.Run(scenario.Name, func(t *testing.T) {
			assert.Equal(t, scenario.Name, strings.TrimSuffix(filepath.Base(file), ".yaml"),
				"scenario name must match its file name")

			result, err := RunWithGolden(t, scenario, goldenDir)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func mustParse(t *testing.T, src string) *Scenario {
	t.Helper()
	s, err := ParseScenario([]byte(src))
	require.NoError(t, err)
	return s
}

func TestRun_ReportsUnexpectedOutcome(t *testing.T) {
	s := mustParse(t, `
name: wrong_expect
description: "expects ok for a rejected edit"
flow:
  - event: {type: edit, taskId: nope, content: x}
    expect: ok
assertions:
  - {type: task_count, count: 0}
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "expected ok, got not_found")
}

func TestRun_ReportsFailedAssertions(t *testing.T) {
	s := mustParse(t, `
name: wrong_assertions
description: "asserts things that are not true"
ids: [a]
flow:
  - event: {type: create, columnId: todo, content: "A"}
assertions:
  - {type: column, column: todo, taskIds: []}
  - {type: column, column: backlog, taskIds: []}
  - {type: task, task: a, content: "B"}
  - {type: task, task: z}
  - {type: absent, task: a}
  - {type: task_count, count: 2}
  - {type: columns, order: [done, todo]}
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Len(t, result.Errors, 7)
	assert.Contains(t, result.Errors[0], "todo = []")
}

func TestRun_SetupMustSucceed(t *testing.T) {
	s := mustParse(t, `
name: bad_setup
description: "setup creates into a missing column"
setup:
  - {type: create, columnId: backlog, content: "A"}
flow:
  - event: {type: delete, taskId: a}
assertions:
  - {type: task_count, count: 0}
`)
	_, err := Run(s)
	require.Error(t, err)
	assert.True(t, board.IsValidation(err))
}

func TestRun_IDsFallBackToSequence(t *testing.T) {
	s := mustParse(t, `
name: ids_fallback
description: "ids beyond the list come from the sequence"
ids: [first]
flow:
  - event: {type: create, columnId: todo, content: "1"}
  - event: {type: create, columnId: todo, content: "2"}
assertions:
  - {type: column, column: todo, taskIds: [task-1, first]}
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, "first", result.Trace[0].TaskID)
	assert.Equal(t, "task-1", result.Trace[1].TaskID)
}

func TestRun_TraceIsDeterministic(t *testing.T) {
	s, err := LoadScenario(filepath.Join(scenarioDir, "stale_references.yaml"))
	require.NoError(t, err)

	r1, err := Run(s)
	require.NoError(t, err)
	r2, err := Run(s)
	require.NoError(t, err)

	a, err := Snapshot(s.Name, r1)
	require.NoError(t, err)
	b, err := Snapshot(s.Name, r2)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestFindScenarios_Filter(t *testing.T) {
	files, err := FindScenarios(scenarioDir, "reorder_*")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "reorder_across_columns.yaml", filepath.Base(files[0]))

	_, err = FindScenarios(scenarioDir, "[")
	assert.Error(t, err)
}
