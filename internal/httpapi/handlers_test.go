package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kanban/internal/board"
	"github.com/roach88/kanban/internal/session"
	"github.com/roach88/kanban/internal/store"
	"github.com/roach88/kanban/internal/testutil"
)

type failingKV struct {
	*store.Memory
	fail atomic.Bool
}

func (f *failingKV) Put(ctx context.Context, key string, value []byte) error {
	if f.fail.Load() {
		return errors.New("disk full")
	}
	return f.Memory.Put(ctx, key, value)
}

func newServer(t *testing.T) (*echo.Echo, *session.Manager, *failingKV) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	kv := &failingKV{Memory: store.NewMemory()}
	m, err := session.Open(context.Background(), kv, board.DefaultLayout(),
		session.WithRules(board.Rules{IDs: testutil.NewSequenceIDGenerator("task")}),
		session.WithLogger(logger),
	)
	require.NoError(t, err)
	return New(m, logger), m, kv
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) eventsResponse {
	t.Helper()
	var resp eventsResponse
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHealthz(t *testing.T) {
	e, _, _ := newServer(t)
	rec := do(e, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetBoard(t *testing.T) {
	e, m, _ := newServer(t)
	_, err := m.CreateTask(context.Background(), "todo", "write docs")
	require.NoError(t, err)

	rec := do(e, http.MethodGet, "/api/board", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var b board.Board
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &b))
	assert.Equal(t, []string{"todo", "in-progress", "done"}, b.ColumnOrder)
	assert.Equal(t, []string{"task-1"}, b.Columns["todo"].TaskIDs)
	assert.Equal(t, "write docs", b.Tasks["task-1"].Content)
}

func TestPostEvents_AppliesInOrder(t *testing.T) {
	e, m, _ := newServer(t)
	body := `[
		{"type":"create","columnId":"todo","content":"a"},
		{"type":"create","columnId":"todo","content":"b"},
		{"type":"reorder","taskId":"task-1","source":{"columnId":"todo","index":1},"destination":{"columnId":"done","index":0}},
		{"type":"reorder","taskId":"task-2","source":{"columnId":"todo","index":0},"destination":null}
	]`

	rec := do(e, http.MethodPost, "/api/events", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decodeResponse(t, rec)
	assert.Equal(t, 3, resp.Applied)
	assert.Equal(t, []string{"task-1", "task-2", "task-1", "task-2"}, resp.TaskIDs)
	assert.Nil(t, resp.Error)
	assert.Equal(t, []string{"task-2"}, resp.Board.Columns["todo"].TaskIDs)
	assert.Equal(t, []string{"task-1"}, resp.Board.Columns["done"].TaskIDs)
	assert.True(t, board.Equal(m.Board(), resp.Board))
}

func TestPostEvents_ErrorStatus(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{
			name:   "blank content",
			body:   `[{"type":"create","columnId":"todo","content":"   "}]`,
			status: http.StatusBadRequest,
			code:   "VALIDATION",
		},
		{
			name:   "unknown task",
			body:   `[{"type":"delete","taskId":"missing-id"}]`,
			status: http.StatusNotFound,
			code:   "NOT_FOUND",
		},
		{
			name:   "stale source",
			body:   `[{"type":"create","columnId":"todo","content":"a"},{"type":"reorder","taskId":"task-1","source":{"columnId":"todo","index":3},"destination":{"columnId":"done","index":0}}]`,
			status: http.StatusConflict,
			code:   "CONFLICT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _, _ := newServer(t)
			rec := do(e, http.MethodPost, "/api/events", tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())

			resp := decodeResponse(t, rec)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			require.NotNil(t, resp.Board)
		})
	}
}

func TestPostEvents_StopsAtFirstError(t *testing.T) {
	e, m, _ := newServer(t)
	body := `[
		{"type":"create","columnId":"todo","content":"a"},
		{"type":"edit","taskId":"ghost","content":"x"},
		{"type":"create","columnId":"todo","content":"never"}
	]`

	rec := do(e, http.MethodPost, "/api/events", body)
	require.Equal(t, http.StatusNotFound, rec.Code)

	resp := decodeResponse(t, rec)
	assert.Equal(t, 1, resp.Applied)
	assert.Equal(t, []string{"task-1", "ghost"}, resp.TaskIDs)
	assert.Equal(t, 1, m.Board().TaskCount())
}

func TestPostEvents_InvalidBody(t *testing.T) {
	e, _, _ := newServer(t)
	for _, body := range []string{
		`not json`,
		`{"type":"create"}`,
		`[{"type":"create","columnId":"todo","content":"a","extra":1}]`,
	} {
		rec := do(e, http.MethodPost, "/api/events", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestPostEvents_PersistFailure(t *testing.T) {
	e, m, kv := newServer(t)
	kv.fail.Store(true)

	rec := do(e, http.MethodPost, "/api/events", `[{"type":"create","columnId":"todo","content":"a"}]`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "STORAGE", resp.Error.Code)
	// In-memory state stays authoritative.
	assert.Equal(t, 1, resp.Applied)
	assert.Equal(t, 1, m.Board().TaskCount())
}
