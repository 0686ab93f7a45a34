package domain

import (
	"bytes"
	"encoding/json"
	"reflect"
	"time"

	"github.com/google/uuid"
)

type Note struct {
	ID         uuid.UUID       `json:"id"`
	Title      string          `json:"title"`
	Content    json.RawMessage `json:"content"`
	IsPinned   bool            `json:"isPinned"`
	IsFavorite bool            `json:"isFavorite"`
	FolderID   *uuid.UUID      `json:"folderId"`
	UserID     uuid.UUID       `json:"userId"`
	DeletedAt  *time.Time      `json:"deletedAt"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`

	Folder *Folder `json:"folder"`
	Tags   []Tag   `json:"tags"`
	// LinkedTasks is populated on single-note reads only.
	LinkedTasks []Task `json:"linkedTasks,omitempty"`
}

// Trashed reports whether the note is in the trash.
func (n *Note) Trashed() bool {
	return n.DeletedAt != nil
}

type NoteVersion struct {
	ID        uuid.UUID       `json:"id"`
	NoteID    uuid.UUID       `json:"noteId"`
	Content   json.RawMessage `json:"content"`
	CreatedAt time.Time       `json:"createdAt"`
}

// MaxNoteVersions bounds the version history per note; the oldest version is
// evicted when a new snapshot would exceed it.
const MaxNoteVersions = 5

// ContentEqual compares two opaque note documents by deep value, so that
// re-encoded but semantically identical JSON does not count as a change.
func ContentEqual(a, b json.RawMessage) bool {
	var av, bv any
	if json.Unmarshal(a, &av) != nil || json.Unmarshal(b, &bv) != nil {
		return bytes.Equal(a, b)
	}
	return reflect.DeepEqual(av, bv)
}

// EmptyContent is the document a note starts with when none is supplied.
func EmptyContent() json.RawMessage {
	return json.RawMessage(`{}`)
}
