package ports

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/slate-notes/api/internal/core/domain"
)

type NoteFilters struct {
	FolderID   *uuid.UUID
	TagID      *uuid.UUID
	IsPinned   *bool
	IsFavorite *bool
	// Search matches the title case-insensitively; content is not searched.
	Search string
}

type CreateNoteInput struct {
	Title    string
	Content  json.RawMessage
	FolderID *uuid.UUID
}

type UpdateNoteInput struct {
	Title      *string
	Content    json.RawMessage
	IsPinned   *bool
	IsFavorite *bool
	FolderID   *uuid.UUID
	// FolderSet distinguishes "leave the folder alone" from "move to root"
	// (folderId explicitly null).
	FolderSet bool
}

type NoteRepository interface {
	Create(ctx context.Context, note *domain.Note) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Note, error)
	List(ctx context.Context, userID uuid.UUID, filters NoteFilters) ([]*domain.Note, error)
	ListTrashed(ctx context.Context, userID uuid.UUID) ([]*domain.Note, error)
	// Update writes the note's mutable fields; when snapshot is non-nil it
	// also records it as a new version, evicting the oldest past the cap,
	// all in one transaction.
	Update(ctx context.Context, note *domain.Note, snapshot json.RawMessage) error
	SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) error
	ListVersions(ctx context.Context, noteID uuid.UUID) ([]*domain.NoteVersion, error)
	GetVersion(ctx context.Context, versionID uuid.UUID) (*domain.NoteVersion, error)
	// RestoreVersion snapshots the current content and overwrites the note's
	// content in one transaction.
	RestoreVersion(ctx context.Context, noteID uuid.UUID, content, snapshot json.RawMessage) error
	AddTag(ctx context.Context, noteID, tagID uuid.UUID) error
	RemoveTag(ctx context.Context, noteID, tagID uuid.UUID) error
}

type NoteService interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateNoteInput) (*domain.Note, error)
	List(ctx context.Context, userID uuid.UUID, filters NoteFilters) ([]*domain.Note, error)
	ListTrashed(ctx context.Context, userID uuid.UUID) ([]*domain.Note, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Note, error)
	Update(ctx context.Context, userID, id uuid.UUID, input UpdateNoteInput) (*domain.Note, error)
	SoftDelete(ctx context.Context, userID, id uuid.UUID) (permanent bool, err error)
	Restore(ctx context.Context, userID, id uuid.UUID) error
	ListVersions(ctx context.Context, userID, noteID uuid.UUID) ([]*domain.NoteVersion, error)
	RestoreVersion(ctx context.Context, userID, noteID, versionID uuid.UUID) error
	AddTag(ctx context.Context, userID, noteID, tagID uuid.UUID) error
	RemoveTag(ctx context.Context, userID, noteID, tagID uuid.UUID) error
}
