package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noteBody struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Content    json.RawMessage `json:"content"`
	IsPinned   bool            `json:"isPinned"`
	IsFavorite bool            `json:"isFavorite"`
	FolderID   *string         `json:"folderId"`
	DeletedAt  *time.Time      `json:"deletedAt"`
	Tags       []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"tags"`
}

type versionBody struct {
	ID      string          `json:"id"`
	NoteID  string          `json:"noteId"`
	Content json.RawMessage `json:"content"`
}

func (app *TestApp) createNote(t *testing.T, token string, payload any) noteBody {
	t.Helper()
	resp := app.do(t, http.MethodPost, "/api/notes", token, payload)
	require.Equal(t, http.StatusCreated, resp.Status)
	var note noteBody
	decodeData(t, resp, &note)
	return note
}

func (app *TestApp) getNote(t *testing.T, token, id string) noteBody {
	t.Helper()
	resp := app.do(t, http.MethodGet, "/api/notes/"+id, token, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	var note noteBody
	decodeData(t, resp, &note)
	return note
}

func (app *TestApp) listVersions(t *testing.T, token, noteID string) []versionBody {
	t.Helper()
	resp := app.do(t, http.MethodGet, "/api/notes/"+noteID+"/versions", token, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	var versions []versionBody
	decodeData(t, resp, &versions)
	return versions
}

func TestNoteCreateAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)
	session := app.signupUser(t)

	// Empty body gets defaults.
	note := app.createNote(t, session.AccessToken, map[string]any{})
	assert.Equal(t, "Untitled", note.Title)
	assert.JSONEq(t, "{}", string(note.Content))

	fetched := app.getNote(t, session.AccessToken, note.ID)
	assert.Equal(t, note.ID, fetched.ID)

	// Another user cannot see it.
	other := app.signupUser(t)
	resp := app.do(t, http.MethodGet, "/api/notes/"+note.ID, other.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.Status)

	// Unauthenticated access is rejected.
	resp = app.do(t, http.MethodGet, "/api/notes/"+note.ID, "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Status)
}

func TestNoteVersioning(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)
	session := app.signupUser(t)

	note := app.createNote(t, session.AccessToken, map[string]any{
		"title":   "Versioned",
		"content": map[string]any{"rev": 0},
	})

	// A title-only update produces no version.
	resp := app.do(t, http.MethodPut, "/api/notes/"+note.ID, session.AccessToken, map[string]any{
		"title": "Versioned renamed",
	})
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Empty(t, app.listVersions(t, session.AccessToken, note.ID))

	// Eight content edits leave only the five newest snapshots.
	for rev := 1; rev <= 8; rev++ {
		resp = app.do(t, http.MethodPut, "/api/notes/"+note.ID, session.AccessToken, map[string]any{
			"content": map[string]any{"rev": rev},
		})
		require.Equal(t, http.StatusOK, resp.Status)
	}

	versions := app.listVersions(t, session.AccessToken, note.ID)
	require.Len(t, versions, 5)

	// Newest first; each snapshot is the content as it was before its edit.
	var newest struct {
		Rev int `json:"rev"`
	}
	require.NoError(t, json.Unmarshal(versions[0].Content, &newest))
	assert.Equal(t, 7, newest.Rev)

	// Re-sending the current content verbatim adds nothing.
	resp = app.do(t, http.MethodPut, "/api/notes/"+note.ID, session.AccessToken, map[string]any{
		"content": map[string]any{"rev": 8},
	})
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Len(t, app.listVersions(t, session.AccessToken, note.ID), 5)
}

func TestNoteVersionOrderStableForEqualTimestamps(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)
	session := app.signupUser(t)

	note := app.createNote(t, session.AccessToken, map[string]any{"title": "Clocked"})

	// Two snapshots sharing a created_at must still list in a fixed order.
	ids := []string{uuid.NewString(), uuid.NewString()}
	sort.Strings(ids)
	stamp := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for i, id := range ids {
		_, err := app.DB.Exec(
			`INSERT INTO note_versions (id, note_id, content, created_at) VALUES ($1, $2, $3, $4)`,
			id, note.ID, fmt.Sprintf(`{"rev": %d}`, i), stamp,
		)
		require.NoError(t, err)
	}
	_, err := app.DB.Exec(
		`INSERT INTO note_versions (id, note_id, content, created_at) VALUES ($1, $2, $3, $4)`,
		uuid.NewString(), note.ID, `{"rev": 2}`, stamp.Add(time.Second),
	)
	require.NoError(t, err)

	versions := app.listVersions(t, session.AccessToken, note.ID)
	require.Len(t, versions, 3)

	// Newest first, then id as the tiebreaker.
	var newest struct {
		Rev int `json:"rev"`
	}
	require.NoError(t, json.Unmarshal(versions[0].Content, &newest))
	assert.Equal(t, 2, newest.Rev)
	assert.Equal(t, ids, []string{versions[1].ID, versions[2].ID})
}

func TestNoteVersionRestore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)
	session := app.signupUser(t)

	note := app.createNote(t, session.AccessToken, map[string]any{
		"title":   "Restorable",
		"content": map[string]any{"text": "first"},
	})
	resp := app.do(t, http.MethodPut, "/api/notes/"+note.ID, session.AccessToken, map[string]any{
		"content": map[string]any{"text": "second"},
	})
	require.Equal(t, http.StatusOK, resp.Status)

	versions := app.listVersions(t, session.AccessToken, note.ID)
	require.Len(t, versions, 1)
	assert.JSONEq(t, `{"text":"first"}`, string(versions[0].Content))

	resp = app.do(t, http.MethodPost, "/api/notes/"+note.ID+"/versions/restore", session.AccessToken, map[string]string{
		"versionId": versions[0].ID,
	})
	require.Equal(t, http.StatusOK, resp.Status)

	restored := app.getNote(t, session.AccessToken, note.ID)
	assert.JSONEq(t, `{"text":"first"}`, string(restored.Content))

	// The restore snapshotted the pre-restore content, so it can be undone.
	versions = app.listVersions(t, session.AccessToken, note.ID)
	require.Len(t, versions, 2)
	assert.JSONEq(t, `{"text":"second"}`, string(versions[0].Content))

	// A version belonging to another note is rejected.
	otherNote := app.createNote(t, session.AccessToken, map[string]any{"title": "Other"})
	resp = app.do(t, http.MethodPost, "/api/notes/"+otherNote.ID+"/versions/restore", session.AccessToken, map[string]string{
		"versionId": versions[0].ID,
	})
	assert.Equal(t, http.StatusNotFound, resp.Status)
}

func TestNoteTrashFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)
	session := app.signupUser(t)

	note := app.createNote(t, session.AccessToken, map[string]any{"title": "Doomed"})

	// First delete trashes.
	resp := app.do(t, http.MethodDelete, "/api/notes/"+note.ID, session.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Contains(t, string(resp.Body.Data), "trash")

	// Trashed notes leave the main list and appear in the trash.
	resp = app.do(t, http.MethodGet, "/api/notes", session.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	var listed []noteBody
	decodeData(t, resp, &listed)
	assert.Empty(t, listed)

	resp = app.do(t, http.MethodGet, "/api/notes/trash", session.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	var trashed []noteBody
	decodeData(t, resp, &trashed)
	require.Len(t, trashed, 1)
	assert.NotNil(t, trashed[0].DeletedAt)

	// Restore brings it back.
	resp = app.do(t, http.MethodPost, "/api/notes/"+note.ID+"/restore", session.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	restored := app.getNote(t, session.AccessToken, note.ID)
	assert.Nil(t, restored.DeletedAt)

	// Trash again, then delete again: this time it is gone for good.
	resp = app.do(t, http.MethodDelete, "/api/notes/"+note.ID, session.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	resp = app.do(t, http.MethodDelete, "/api/notes/"+note.ID, session.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Contains(t, string(resp.Body.Data), "permanently")

	var count int
	require.NoError(t, app.DB.QueryRow("SELECT count(*) FROM notes WHERE id = $1", note.ID).Scan(&count))
	assert.Zero(t, count)

	resp = app.do(t, http.MethodGet, "/api/notes/"+note.ID, session.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.Status)
}

func TestNoteListOrderingAndFilters(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)
	session := app.signupUser(t)

	for i := 1; i <= 3; i++ {
		app.createNote(t, session.AccessToken, map[string]any{"title": fmt.Sprintf("Note %d", i)})
		time.Sleep(10 * time.Millisecond)
	}

	// Pin the oldest; pinned notes lead regardless of recency.
	resp := app.do(t, http.MethodGet, "/api/notes", session.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	var notes []noteBody
	decodeData(t, resp, &notes)
	require.Len(t, notes, 3)
	assert.Equal(t, "Note 3", notes[0].Title)

	oldest := notes[2]
	require.Equal(t, "Note 1", oldest.Title)
	resp = app.do(t, http.MethodPut, "/api/notes/"+oldest.ID, session.AccessToken, map[string]any{
		"isPinned": true,
	})
	require.Equal(t, http.StatusOK, resp.Status)

	resp = app.do(t, http.MethodGet, "/api/notes", session.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	decodeData(t, resp, &notes)
	assert.Equal(t, "Note 1", notes[0].Title)

	// Title search is case-insensitive and ignores other users' notes.
	other := app.signupUser(t)
	app.createNote(t, other.AccessToken, map[string]any{"title": "Note from someone else"})

	resp = app.do(t, http.MethodGet, "/api/notes?search=note%202", session.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	decodeData(t, resp, &notes)
	require.Len(t, notes, 1)
	assert.Equal(t, "Note 2", notes[0].Title)

	resp = app.do(t, http.MethodGet, "/api/notes?isPinned=true", session.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	decodeData(t, resp, &notes)
	require.Len(t, notes, 1)
	assert.Equal(t, "Note 1", notes[0].Title)

	resp = app.do(t, http.MethodGet, "/api/notes?isPinned=maybe", session.AccessToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.Status)
}

func TestNoteFolderAssignment(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)
	session := app.signupUser(t)

	resp := app.do(t, http.MethodPost, "/api/folders", session.AccessToken, map[string]string{"name": "Work"})
	require.Equal(t, http.StatusCreated, resp.Status)
	var folder struct {
		ID string `json:"id"`
	}
	decodeData(t, resp, &folder)

	note := app.createNote(t, session.AccessToken, map[string]any{
		"title":    "Filed",
		"folderId": folder.ID,
	})
	require.NotNil(t, note.FolderID)
	assert.Equal(t, folder.ID, *note.FolderID)

	// An update that does not mention folderId leaves it alone.
	resp = app.do(t, http.MethodPut, "/api/notes/"+note.ID, session.AccessToken, map[string]any{
		"title": "Filed still",
	})
	require.Equal(t, http.StatusOK, resp.Status)
	var updated noteBody
	decodeData(t, resp, &updated)
	require.NotNil(t, updated.FolderID)

	// An explicit null moves the note to the root.
	resp = app.do(t, http.MethodPut, "/api/notes/"+note.ID, session.AccessToken, map[string]any{
		"folderId": nil,
	})
	require.Equal(t, http.StatusOK, resp.Status)
	decodeData(t, resp, &updated)
	assert.Nil(t, updated.FolderID)
}

func TestNoteTagging(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)
	session := app.signupUser(t)

	note := app.createNote(t, session.AccessToken, map[string]any{"title": "Tagged"})

	resp := app.do(t, http.MethodPost, "/api/tags", session.AccessToken, map[string]string{"name": "urgent"})
	require.Equal(t, http.StatusCreated, resp.Status)
	var tag struct {
		ID    string `json:"id"`
		Color string `json:"color"`
	}
	decodeData(t, resp, &tag)
	assert.Equal(t, "blue", tag.Color)

	// Attaching twice is a no-op, not an error.
	for i := 0; i < 2; i++ {
		resp = app.do(t, http.MethodPost, "/api/notes/"+note.ID+"/tags/"+tag.ID, session.AccessToken, nil)
		require.Equal(t, http.StatusOK, resp.Status)
	}

	fetched := app.getNote(t, session.AccessToken, note.ID)
	require.Len(t, fetched.Tags, 1)
	assert.Equal(t, "urgent", fetched.Tags[0].Name)

	// Filter by tag.
	var notes []noteBody
	resp = app.do(t, http.MethodGet, "/api/notes?tagId="+tag.ID, session.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	decodeData(t, resp, &notes)
	require.Len(t, notes, 1)

	// Detach, twice.
	for i := 0; i < 2; i++ {
		resp = app.do(t, http.MethodDelete, "/api/notes/"+note.ID+"/tags/"+tag.ID, session.AccessToken, nil)
		require.Equal(t, http.StatusOK, resp.Status)
	}
	fetched = app.getNote(t, session.AccessToken, note.ID)
	assert.Empty(t, fetched.Tags)

	// A tag someone else owns cannot be attached.
	other := app.signupUser(t)
	resp = app.do(t, http.MethodPost, "/api/tags", other.AccessToken, map[string]string{"name": "theirs"})
	require.Equal(t, http.StatusCreated, resp.Status)
	var foreign struct {
		ID string `json:"id"`
	}
	decodeData(t, resp, &foreign)

	resp = app.do(t, http.MethodPost, "/api/notes/"+note.ID+"/tags/"+foreign.ID, session.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.Status)
}
