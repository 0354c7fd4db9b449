package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kanban/internal/board"
	"github.com/roach88/kanban/internal/snapshot"
)

const eventStream = `# seed the board
{"type":"create","columnId":"todo","content":"a"}
{"type":"create","columnId":"todo","content":"b"}

{"type":"reorder","taskId":"dragged-off-board","destination":null}
`

func runWithStdin(t *testing.T, db, stdin string, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--db", db}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestApplyCommand(t *testing.T) {
	db := tempDB(t)
	path := filepath.Join(t.TempDir(), "events.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(eventStream), 0644))

	out, err := runKanban(t, db, "--format", "json", "apply", path)
	require.NoError(t, err, out)

	var resp struct {
		Status string      `json:"status"`
		Data   ApplyResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 3, resp.Data.Events)
	assert.Equal(t, 2, resp.Data.Applied)
	require.Len(t, resp.Data.TaskIDs, 3)
	assert.Equal(t, []string{resp.Data.TaskIDs[1], resp.Data.TaskIDs[0]}, resp.Data.Board.Columns["todo"].TaskIDs)
}

func TestApplyCommand_Stdin(t *testing.T) {
	db := tempDB(t)

	out, err := runWithStdin(t, db, `{"type":"create","columnId":"done","content":"shipped"}`+"\n", "apply", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "Applied 1 of 1 events")
}

func TestApplyCommand_StopsAtFirstRejection(t *testing.T) {
	db := tempDB(t)
	stream := `{"type":"create","columnId":"todo","content":"kept"}
{"type":"delete","taskId":"ghost"}
{"type":"create","columnId":"todo","content":"never"}
`

	out, err := runWithStdin(t, db, stream, "--format", "json", "apply", "-")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "event 1 (delete)")

	show, err := runKanban(t, db, "show")
	require.NoError(t, err)
	assert.Contains(t, show, "To Do (todo) [1]")
	assert.NotContains(t, show, "never")
}

func TestApplyCommand_BadInput(t *testing.T) {
	db := tempDB(t)

	_, err := runWithStdin(t, db, "{not json}\n", "apply", "-")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "line 1")

	_, err = runKanban(t, db, "apply", filepath.Join(t.TempDir(), "missing.jsonl"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestExportImportRoundTrip(t *testing.T) {
	src := tempDB(t)
	_, err := runKanban(t, src, "create", "todo", "a <b> & c")
	require.NoError(t, err)
	_, err = runKanban(t, src, "create", "done", "shipped")
	require.NoError(t, err)

	exported, err := runKanban(t, src, "export")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(exported, `{"version":1,"board":`))
	assert.Contains(t, exported, "a <b> & c")

	path := filepath.Join(t.TempDir(), "board.json")
	_, err = runKanban(t, src, "export", "-o", path)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, exported, string(data))

	dst := tempDB(t)
	out, err := runKanban(t, dst, "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported board with 2 tasks in 3 columns")

	again, err := runKanban(t, dst, "export")
	require.NoError(t, err)
	assert.Equal(t, exported, again)
}

func TestImportCommand_LegacySnapshot(t *testing.T) {
	legacy := `{"tasks":{"1":{"id":"1","content":"old"}},` +
		`"columns":{"todo":{"id":"todo","title":"To Do","taskIds":["1"]},"done":{"id":"done","title":"Done","taskIds":[]}},` +
		`"columnOrder":["todo","done"]}`

	db := tempDB(t)
	_, err := runWithStdin(t, db, legacy, "import", "-")
	require.NoError(t, err)

	exported, err := runKanban(t, db, "export")
	require.NoError(t, err)
	b, err := snapshot.Decode([]byte(exported))
	require.NoError(t, err)
	assert.Equal(t, []string{"todo", "done"}, b.ColumnOrder)
	assert.Equal(t, board.Task{ID: "1", Content: "old"}, b.Tasks["1"])
}

func TestImportCommand_RejectsCorruptSnapshot(t *testing.T) {
	corrupt := `{"version":1,"board":{"tasks":{},"columns":{"x":{"id":"x","title":"X","taskIds":["ghost"]}},"columnOrder":["x"]}}`

	_, err := runWithStdin(t, tempDB(t), corrupt, "import", "-")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.ErrorIs(t, err, snapshot.ErrCorrupt)
}
