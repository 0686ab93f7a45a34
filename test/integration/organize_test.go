package integration

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type folderBody struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	NoteCount int    `json:"noteCount"`
}

type tagBody struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	NoteCount int    `json:"noteCount"`
	TaskCount int    `json:"taskCount"`
}

func TestFolderLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)
	session := app.signupUser(t)

	resp := app.do(t, http.MethodPost, "/api/folders", session.AccessToken, map[string]string{"name": "Work"})
	require.Equal(t, http.StatusCreated, resp.Status)
	var folder folderBody
	decodeData(t, resp, &folder)

	// Names are unique per user.
	resp = app.do(t, http.MethodPost, "/api/folders", session.AccessToken, map[string]string{"name": "Work"})
	assert.Equal(t, http.StatusBadRequest, resp.Status)

	// Another user may reuse the name.
	other := app.signupUser(t)
	resp = app.do(t, http.MethodPost, "/api/folders", other.AccessToken, map[string]string{"name": "Work"})
	assert.Equal(t, http.StatusCreated, resp.Status)

	// Filing notes shows up in the count; trashed notes do not count.
	app.createNote(t, session.AccessToken, map[string]any{"title": "Filed 1", "folderId": folder.ID})
	doomed := app.createNote(t, session.AccessToken, map[string]any{"title": "Filed 2", "folderId": folder.ID})
	resp = app.do(t, http.MethodDelete, "/api/notes/"+doomed.ID, session.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.Status)

	resp = app.do(t, http.MethodGet, "/api/folders", session.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	var folders []folderBody
	decodeData(t, resp, &folders)
	require.Len(t, folders, 1)
	assert.Equal(t, 1, folders[0].NoteCount)

	// Rename, including into a conflict.
	resp = app.do(t, http.MethodPost, "/api/folders", session.AccessToken, map[string]string{"name": "Personal"})
	require.Equal(t, http.StatusCreated, resp.Status)
	var personal folderBody
	decodeData(t, resp, &personal)

	resp = app.do(t, http.MethodPut, "/api/folders/"+personal.ID, session.AccessToken, map[string]string{"name": "Work"})
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	resp = app.do(t, http.MethodPut, "/api/folders/"+personal.ID, session.AccessToken, map[string]string{"name": "Life"})
	assert.Equal(t, http.StatusOK, resp.Status)

	// Deleting a folder keeps its notes, now unfiled.
	resp = app.do(t, http.MethodDelete, "/api/folders/"+folder.ID, session.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.Status)

	resp = app.do(t, http.MethodGet, "/api/notes", session.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	var notes []noteBody
	decodeData(t, resp, &notes)
	require.Len(t, notes, 1)
	assert.Nil(t, notes[0].FolderID)

	// Foreign folders are invisible.
	resp = app.do(t, http.MethodDelete, "/api/folders/"+personal.ID, other.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.Status)
}

func TestTagLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)
	session := app.signupUser(t)

	resp := app.do(t, http.MethodPost, "/api/tags", session.AccessToken, map[string]string{"name": "reading", "color": "green"})
	require.Equal(t, http.StatusCreated, resp.Status)
	var tag tagBody
	decodeData(t, resp, &tag)
	assert.Equal(t, "green", tag.Color)

	resp = app.do(t, http.MethodPost, "/api/tags", session.AccessToken, map[string]string{"name": "reading"})
	assert.Equal(t, http.StatusBadRequest, resp.Status)

	resp = app.do(t, http.MethodPut, "/api/tags/"+tag.ID, session.AccessToken, map[string]string{"color": "red"})
	require.Equal(t, http.StatusOK, resp.Status)
	decodeData(t, resp, &tag)
	assert.Equal(t, "red", tag.Color)
	assert.Equal(t, "reading", tag.Name)

	// Tag lists come back sorted by name with usage counts.
	resp = app.do(t, http.MethodPost, "/api/tags", session.AccessToken, map[string]string{"name": "archive"})
	require.Equal(t, http.StatusCreated, resp.Status)

	note := app.createNote(t, session.AccessToken, map[string]any{"title": "Tagged"})
	resp = app.do(t, http.MethodPost, "/api/notes/"+note.ID+"/tags/"+tag.ID, session.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.Status)

	resp = app.do(t, http.MethodGet, "/api/tags", session.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	var tags []tagBody
	decodeData(t, resp, &tags)
	require.Len(t, tags, 2)
	assert.Equal(t, "archive", tags[0].Name)
	assert.Equal(t, "reading", tags[1].Name)
	assert.Equal(t, 1, tags[1].NoteCount)

	// Deleting a tag detaches it from notes but keeps the notes.
	resp = app.do(t, http.MethodDelete, "/api/tags/"+tag.ID, session.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.Status)

	fetched := app.getNote(t, session.AccessToken, note.ID)
	assert.Empty(t, fetched.Tags)
}
