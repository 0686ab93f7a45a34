package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/slate-notes/api/internal/core/domain"
	"github.com/slate-notes/api/internal/core/ports"
)

type noteService struct {
	noteRepo ports.NoteRepository
	tagRepo  ports.TagRepository
}

func NewNoteService(noteRepo ports.NoteRepository, tagRepo ports.TagRepository) ports.NoteService {
	return &noteService{
		noteRepo: noteRepo,
		tagRepo:  tagRepo,
	}
}

func (s *noteService) Create(ctx context.Context, userID uuid.UUID, input ports.CreateNoteInput) (*domain.Note, error) {
	title := input.Title
	if title == "" {
		title = "Untitled"
	}
	content := input.Content
	if content == nil {
		content = domain.EmptyContent()
	}

	note := &domain.Note{
		ID:       uuid.New(),
		Title:    title,
		Content:  content,
		FolderID: input.FolderID,
		UserID:   userID,
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		return nil, err
	}

	return s.noteRepo.GetByID(ctx, userID, note.ID)
}

func (s *noteService) List(ctx context.Context, userID uuid.UUID, filters ports.NoteFilters) ([]*domain.Note, error) {
	return s.noteRepo.List(ctx, userID, filters)
}

func (s *noteService) ListTrashed(ctx context.Context, userID uuid.UUID) ([]*domain.Note, error) {
	return s.noteRepo.ListTrashed(ctx, userID)
}

func (s *noteService) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Note, error) {
	return s.noteRepo.GetByID(ctx, userID, id)
}

func (s *noteService) Update(ctx context.Context, userID, id uuid.UUID, input ports.UpdateNoteInput) (*domain.Note, error) {
	existing, err := s.noteRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	// Only a content change produces a version, and the snapshot is taken
	// from the stored content before the update is applied.
	var snapshot []byte
	if input.Content != nil && !domain.ContentEqual(existing.Content, input.Content) {
		snapshot = existing.Content
	}

	if input.Title != nil {
		existing.Title = *input.Title
	}
	if input.Content != nil {
		existing.Content = input.Content
	}
	if input.IsPinned != nil {
		existing.IsPinned = *input.IsPinned
	}
	if input.IsFavorite != nil {
		existing.IsFavorite = *input.IsFavorite
	}
	if input.FolderSet {
		existing.FolderID = input.FolderID
	}

	if err := s.noteRepo.Update(ctx, existing, snapshot); err != nil {
		return nil, fmt.Errorf("failed to update note: %w", err)
	}

	return s.noteRepo.GetByID(ctx, userID, id)
}

func (s *noteService) SoftDelete(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	note, err := s.noteRepo.GetByID(ctx, userID, id)
	if err != nil {
		return false, err
	}

	// Deleting a trashed note escalates to a permanent delete; versions and
	// tag links go with it via the cascade.
	if note.Trashed() {
		if err := s.noteRepo.Delete(ctx, id); err != nil {
			return false, fmt.Errorf("failed to delete note: %w", err)
		}
		return true, nil
	}

	if err := s.noteRepo.SoftDelete(ctx, id, time.Now()); err != nil {
		return false, fmt.Errorf("failed to trash note: %w", err)
	}
	return false, nil
}

func (s *noteService) Restore(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.noteRepo.GetByID(ctx, userID, id); err != nil {
		return err
	}
	// Restoring an active note is a harmless no-op.
	return s.noteRepo.Restore(ctx, id)
}

func (s *noteService) ListVersions(ctx context.Context, userID, noteID uuid.UUID) ([]*domain.NoteVersion, error) {
	if _, err := s.noteRepo.GetByID(ctx, userID, noteID); err != nil {
		return nil, err
	}
	return s.noteRepo.ListVersions(ctx, noteID)
}

func (s *noteService) RestoreVersion(ctx context.Context, userID, noteID, versionID uuid.UUID) error {
	note, err := s.noteRepo.GetByID(ctx, userID, noteID)
	if err != nil {
		return err
	}

	version, err := s.noteRepo.GetVersion(ctx, versionID)
	if err != nil {
		return err
	}
	if version == nil || version.NoteID != noteID {
		return domain.ErrVersionNotFound
	}

	// Restoring is itself a content change: the current content is saved as
	// a version first so the restore can be undone.
	return s.noteRepo.RestoreVersion(ctx, noteID, version.Content, note.Content)
}

func (s *noteService) AddTag(ctx context.Context, userID, noteID, tagID uuid.UUID) error {
	if _, err := s.noteRepo.GetByID(ctx, userID, noteID); err != nil {
		return err
	}
	if _, err := s.tagRepo.GetByID(ctx, userID, tagID); err != nil {
		return err
	}
	// Duplicate adds are no-op successes.
	return s.noteRepo.AddTag(ctx, noteID, tagID)
}

func (s *noteService) RemoveTag(ctx context.Context, userID, noteID, tagID uuid.UUID) error {
	if _, err := s.noteRepo.GetByID(ctx, userID, noteID); err != nil {
		return err
	}
	// Removing an absent association is a no-op success.
	return s.noteRepo.RemoveTag(ctx, noteID, tagID)
}
