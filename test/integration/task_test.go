package integration

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type taskBody struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Done     bool    `json:"done"`
	Priority string  `json:"priority"`
	DueDate  *string `json:"dueDate"`
	NoteID   *string `json:"noteId"`
	Source   string  `json:"source"`
	SourceID *string `json:"sourceId"`
}

func (app *TestApp) syncTasks(t *testing.T, token, noteID string, tasks []map[string]any) []taskBody {
	t.Helper()
	resp := app.do(t, http.MethodPost, "/api/tasks/sync/"+noteID, token, map[string]any{"tasks": tasks})
	require.Equal(t, http.StatusOK, resp.Status)
	var out []taskBody
	decodeData(t, resp, &out)
	return out
}

func TestTaskCRUD(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)
	session := app.signupUser(t)

	resp := app.do(t, http.MethodPost, "/api/tasks", session.AccessToken, map[string]any{
		"title": "Water the plants",
	})
	require.Equal(t, http.StatusCreated, resp.Status)
	var task taskBody
	decodeData(t, resp, &task)
	assert.Equal(t, "MEDIUM", task.Priority)
	assert.Equal(t, "STANDALONE", task.Source)
	assert.False(t, task.Done)

	// Validation
	resp = app.do(t, http.MethodPost, "/api/tasks", session.AccessToken, map[string]any{"title": ""})
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	resp = app.do(t, http.MethodPost, "/api/tasks", session.AccessToken, map[string]any{
		"title":    "Bad priority",
		"priority": "URGENT",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Status)

	// Update
	resp = app.do(t, http.MethodPut, "/api/tasks/"+task.ID, session.AccessToken, map[string]any{
		"done":     true,
		"priority": "HIGH",
		"dueDate":  "2026-09-10T12:00:00Z",
	})
	require.Equal(t, http.StatusOK, resp.Status)
	decodeData(t, resp, &task)
	assert.True(t, task.Done)
	assert.Equal(t, "HIGH", task.Priority)
	require.NotNil(t, task.DueDate)

	// An explicit null clears the due date; omitting it leaves it alone.
	resp = app.do(t, http.MethodPut, "/api/tasks/"+task.ID, session.AccessToken, map[string]any{
		"title": "Water the plants daily",
	})
	require.Equal(t, http.StatusOK, resp.Status)
	decodeData(t, resp, &task)
	require.NotNil(t, task.DueDate)

	resp = app.do(t, http.MethodPut, "/api/tasks/"+task.ID, session.AccessToken, map[string]any{
		"dueDate": nil,
	})
	require.Equal(t, http.StatusOK, resp.Status)
	decodeData(t, resp, &task)
	assert.Nil(t, task.DueDate)

	// Another user cannot touch it.
	other := app.signupUser(t)
	resp = app.do(t, http.MethodPut, "/api/tasks/"+task.ID, other.AccessToken, map[string]any{"done": false})
	assert.Equal(t, http.StatusNotFound, resp.Status)

	// Delete
	resp = app.do(t, http.MethodDelete, "/api/tasks/"+task.ID, session.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	resp = app.do(t, http.MethodGet, "/api/tasks/"+task.ID, session.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.Status)
}

func TestTaskListFilters(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)
	session := app.signupUser(t)

	seed := []map[string]any{
		{"title": "Pay rent", "priority": "HIGH"},
		{"title": "Pay electricity", "priority": "HIGH", "done": true},
		{"title": "Read a book", "priority": "LOW"},
	}
	for _, payload := range seed {
		resp := app.do(t, http.MethodPost, "/api/tasks", session.AccessToken, payload)
		require.Equal(t, http.StatusCreated, resp.Status)
	}

	var tasks []taskBody

	resp := app.do(t, http.MethodGet, "/api/tasks?done=false", session.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	decodeData(t, resp, &tasks)
	assert.Len(t, tasks, 2)

	resp = app.do(t, http.MethodGet, "/api/tasks?priority=HIGH", session.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	decodeData(t, resp, &tasks)
	assert.Len(t, tasks, 2)

	resp = app.do(t, http.MethodGet, "/api/tasks?search=pay", session.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	decodeData(t, resp, &tasks)
	assert.Len(t, tasks, 2)

	// Open tasks come before done ones.
	resp = app.do(t, http.MethodGet, "/api/tasks", session.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	decodeData(t, resp, &tasks)
	require.Len(t, tasks, 3)
	assert.False(t, tasks[0].Done)
	assert.True(t, tasks[2].Done)

	resp = app.do(t, http.MethodGet, "/api/tasks?priority=URGENT", session.AccessToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.Status)
}

func TestTaskSyncEndpoint(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)
	session := app.signupUser(t)

	note := app.createNote(t, session.AccessToken, map[string]any{"title": "With checklist"})

	tasks := app.syncTasks(t, session.AccessToken, note.ID, []map[string]any{
		{"sourceId": "t1", "title": "First", "done": false},
		{"sourceId": "t2", "title": "Second", "done": true},
	})
	require.Len(t, tasks, 2)
	for _, task := range tasks {
		assert.Equal(t, "NOTE", task.Source)
		require.NotNil(t, task.NoteID)
		assert.Equal(t, note.ID, *task.NoteID)
	}

	// Same payload again changes nothing.
	again := app.syncTasks(t, session.AccessToken, note.ID, []map[string]any{
		{"sourceId": "t1", "title": "First", "done": false},
		{"sourceId": "t2", "title": "Second", "done": true},
	})
	require.Len(t, again, 2)
	assert.ElementsMatch(t,
		[]string{tasks[0].ID, tasks[1].ID},
		[]string{again[0].ID, again[1].ID},
	)

	// Drop t1, edit t2, add t3.
	final := app.syncTasks(t, session.AccessToken, note.ID, []map[string]any{
		{"sourceId": "t2", "title": "Second edited", "done": false},
		{"sourceId": "t3", "title": "Third", "done": false},
	})
	require.Len(t, final, 2)

	bySource := map[string]taskBody{}
	for _, task := range final {
		require.NotNil(t, task.SourceID)
		bySource[*task.SourceID] = task
	}
	require.NotContains(t, bySource, "t1")
	assert.Equal(t, "Second edited", bySource["t2"].Title)
	assert.False(t, bySource["t2"].Done)
	assert.Contains(t, bySource, "t3")

	// Missing sourceId is rejected.
	resp := app.do(t, http.MethodPost, "/api/tasks/sync/"+note.ID, session.AccessToken, map[string]any{
		"tasks": []map[string]any{{"title": "No source"}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.Status)

	// Someone else's note cannot be synced.
	other := app.signupUser(t)
	resp = app.do(t, http.MethodPost, "/api/tasks/sync/"+note.ID, other.AccessToken, map[string]any{
		"tasks": []map[string]any{},
	})
	assert.Equal(t, http.StatusNotFound, resp.Status)
}

func TestTaskSurvivesNoteDeletion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)
	session := app.signupUser(t)

	note := app.createNote(t, session.AccessToken, map[string]any{"title": "Ephemeral"})
	tasks := app.syncTasks(t, session.AccessToken, note.ID, []map[string]any{
		{"sourceId": "t1", "title": "Outlives the note", "done": false},
	})
	require.Len(t, tasks, 1)

	// Trash, then permanently delete the note.
	resp := app.do(t, http.MethodDelete, "/api/notes/"+note.ID, session.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	resp = app.do(t, http.MethodDelete, "/api/notes/"+note.ID, session.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.Status)

	// The task remains, unlinked.
	resp = app.do(t, http.MethodGet, "/api/tasks/"+tasks[0].ID, session.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	var task taskBody
	decodeData(t, resp, &task)
	assert.Nil(t, task.NoteID)
}
