package board

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kanban/internal/testutil"
)

func TestMarshalCanonical_Exact(t *testing.T) {
	b, err := New(Layout{{ID: "todo", Title: "To Do"}, {ID: "done", Title: "Done"}})
	require.NoError(t, err)
	b, err = Rules{IDs: testutil.NewFixedIDGenerator("t1")}.CreateTask(b, "done", "a <b> & c")
	require.NoError(t, err)

	data, err := MarshalCanonical(b)
	require.NoError(t, err)

	want := `{"tasks":{"t1":{"id":"t1","content":"a <b> & c"}},` +
		`"columns":{"done":{"id":"done","title":"Done","taskIds":["t1"]},"todo":{"id":"todo","title":"To Do","taskIds":[]}},` +
		`"columnOrder":["todo","done"]}`
	assert.Equal(t, want, string(data))
}

func TestMarshalCanonical_NilTaskIDsBecomeEmpty(t *testing.T) {
	b := &Board{
		Tasks:       map[string]Task{},
		Columns:     map[string]Column{"x": {ID: "x", Title: "X"}},
		ColumnOrder: []string{"x"},
	}
	data, err := MarshalCanonical(b)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"taskIds":[]`)
}

func TestMarshalCanonical_PreservesUnicodeForm(t *testing.T) {
	// "\u00e9" and "e\u0301" render alike but are distinct ids.
	b, err := New(Layout{{ID: "todo", Title: "Cafe\u0301"}})
	require.NoError(t, err)
	b.Tasks["\u00e9"] = Task{ID: "\u00e9", Content: "composed"}
	b.Tasks["e\u0301"] = Task{ID: "e\u0301", Content: "decomposed"}
	col := b.Columns["todo"]
	col.TaskIDs = []string{"\u00e9", "e\u0301"}
	b.Columns["todo"] = col
	require.NoError(t, Validate(b))

	data, err := MarshalCanonical(b)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\"title\":\"Cafe\u0301\"")

	var decoded Board
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Len(t, decoded.Tasks, 2)
	assert.True(t, Equal(b, &decoded))
	require.NoError(t, Validate(&decoded))
}

func TestMarshalCanonical_Nil(t *testing.T) {
	_, err := MarshalCanonical(nil)
	assert.Error(t, err)
}

func TestMarshalCanonical_RoundTrip(t *testing.T) {
	b := fixture(t, map[string][]string{"todo": {"a", "b"}, "done": {"c"}})

	data, err := MarshalCanonical(b)
	require.NoError(t, err)

	var decoded Board
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, Equal(b, &decoded))
}

func TestFingerprint(t *testing.T) {
	a := fixture(t, map[string][]string{"todo": {"a", "b"}})
	b := a.Clone()

	fa, err := Fingerprint(a)
	require.NoError(t, err)
	fb, err := Fingerprint(b)
	require.NoError(t, err)
	assert.Equal(t, fa, fb)
	assert.Len(t, fa, 64)

	moved, err := MoveTask(a, "b", "todo", 1, "todo", 0)
	require.NoError(t, err)
	fm, err := Fingerprint(moved)
	require.NoError(t, err)
	assert.NotEqual(t, fa, fm)
}
