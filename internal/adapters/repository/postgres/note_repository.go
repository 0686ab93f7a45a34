package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/slate-notes/api/internal/core/domain"
	"github.com/slate-notes/api/internal/core/ports"
)

type noteRepository struct {
	db *sql.DB
}

func NewNoteRepository(db *sql.DB) ports.NoteRepository {
	return &noteRepository{db: db}
}

const noteColumns = `id, title, content, is_pinned, is_favorite, folder_id, user_id, deleted_at, created_at, updated_at`

func (r *noteRepository) Create(ctx context.Context, note *domain.Note) error {
	query := `
		INSERT INTO notes (id, title, content, folder_id, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, note.ID, note.Title, []byte(note.Content), note.FolderID, note.UserID).
		Scan(&note.CreatedAt, &note.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}
	return nil
}

func (r *noteRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE id = $1 AND user_id = $2`
	note, err := r.scanNote(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNoteNotFound
		}
		return nil, fmt.Errorf("failed to get note: %w", err)
	}

	if err := r.attachRelations(ctx, note); err != nil {
		return nil, err
	}
	tasks, err := r.fetchLinkedTasks(ctx, note.ID)
	if err != nil {
		return nil, err
	}
	note.LinkedTasks = tasks

	return note, nil
}

func (r *noteRepository) List(ctx context.Context, userID uuid.UUID, f ports.NoteFilters) ([]*domain.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE user_id = $1 AND deleted_at IS NULL`
	args := []any{userID}

	if f.FolderID != nil {
		args = append(args, *f.FolderID)
		query += fmt.Sprintf(" AND folder_id = $%d", len(args))
	}
	if f.TagID != nil {
		args = append(args, *f.TagID)
		query += fmt.Sprintf(" AND EXISTS (SELECT 1 FROM note_tags nt WHERE nt.note_id = notes.id AND nt.tag_id = $%d)", len(args))
	}
	if f.IsPinned != nil {
		args = append(args, *f.IsPinned)
		query += fmt.Sprintf(" AND is_pinned = $%d", len(args))
	}
	if f.IsFavorite != nil {
		args = append(args, *f.IsFavorite)
		query += fmt.Sprintf(" AND is_favorite = $%d", len(args))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		query += fmt.Sprintf(" AND title ILIKE $%d", len(args))
	}

	query += " ORDER BY is_pinned DESC, updated_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	return r.scanNotes(ctx, rows)
}

func (r *noteRepository) ListTrashed(ctx context.Context, userID uuid.UUID) ([]*domain.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes
		WHERE user_id = $1 AND deleted_at IS NOT NULL
		ORDER BY deleted_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trashed notes: %w", err)
	}
	defer rows.Close()

	return r.scanNotes(ctx, rows)
}

func (r *noteRepository) Update(ctx context.Context, note *domain.Note, snapshot json.RawMessage) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if snapshot != nil {
		if err := insertVersion(ctx, tx, note.ID, snapshot); err != nil {
			return err
		}
	}

	query := `
		UPDATE notes
		SET title = $2, content = $3, is_pinned = $4, is_favorite = $5, folder_id = $6, updated_at = now()
		WHERE id = $1
	`
	_, err = tx.ExecContext(ctx, query, note.ID, note.Title, []byte(note.Content), note.IsPinned, note.IsFavorite, note.FolderID)
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *noteRepository) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE notes SET deleted_at = $2 WHERE id = $1`, id, at)
	return err
}

func (r *noteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// Versions and tag links cascade; standalone task references get nulled.
	_, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = $1`, id)
	return err
}

func (r *noteRepository) Restore(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `UPDATE notes SET deleted_at = NULL WHERE id = $1`, id)
	return err
}

func (r *noteRepository) ListVersions(ctx context.Context, noteID uuid.UUID) ([]*domain.NoteVersion, error) {
	query := `
		SELECT id, note_id, content, created_at
		FROM note_versions
		WHERE note_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, noteID, domain.MaxNoteVersions)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}
	defer rows.Close()

	var versions []*domain.NoteVersion
	for rows.Next() {
		var v domain.NoteVersion
		var content []byte
		if err := rows.Scan(&v.ID, &v.NoteID, &content, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan version: %w", err)
		}
		v.Content = content
		versions = append(versions, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating versions: %w", err)
	}
	return versions, nil
}

func (r *noteRepository) GetVersion(ctx context.Context, versionID uuid.UUID) (*domain.NoteVersion, error) {
	query := `SELECT id, note_id, content, created_at FROM note_versions WHERE id = $1`
	var v domain.NoteVersion
	var content []byte
	err := r.db.QueryRowContext(ctx, query, versionID).Scan(&v.ID, &v.NoteID, &content, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get version: %w", err)
	}
	v.Content = content
	return &v, nil
}

func (r *noteRepository) RestoreVersion(ctx context.Context, noteID uuid.UUID, content, snapshot json.RawMessage) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertVersion(ctx, tx, noteID, snapshot); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `UPDATE notes SET content = $2, updated_at = now() WHERE id = $1`, noteID, []byte(content))
	if err != nil {
		return fmt.Errorf("failed to restore version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *noteRepository) AddTag(ctx context.Context, noteID, tagID uuid.UUID) error {
	query := `INSERT INTO note_tags (note_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	_, err := r.db.ExecContext(ctx, query, noteID, tagID)
	return err
}

func (r *noteRepository) RemoveTag(ctx context.Context, noteID, tagID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM note_tags WHERE note_id = $1 AND tag_id = $2`, noteID, tagID)
	return err
}

// insertVersion records a content snapshot and evicts everything past the
// newest cap-1 so the table never holds more than the cap after the insert.
func insertVersion(ctx context.Context, tx *sql.Tx, noteID uuid.UUID, content json.RawMessage) error {
	evict := `
		DELETE FROM note_versions
		WHERE note_id = $1 AND id NOT IN (
			SELECT id FROM note_versions
			WHERE note_id = $1
			ORDER BY created_at DESC, id
			LIMIT $2
		)
	`
	if _, err := tx.ExecContext(ctx, evict, noteID, domain.MaxNoteVersions-1); err != nil {
		return fmt.Errorf("failed to evict old versions: %w", err)
	}

	insert := `INSERT INTO note_versions (id, note_id, content) VALUES ($1, $2, $3)`
	if _, err := tx.ExecContext(ctx, insert, uuid.New(), noteID, []byte(content)); err != nil {
		return fmt.Errorf("failed to insert version: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *noteRepository) scanNote(row rowScanner) (*domain.Note, error) {
	var note domain.Note
	var content []byte
	err := row.Scan(
		&note.ID, &note.Title, &content, &note.IsPinned, &note.IsFavorite,
		&note.FolderID, &note.UserID, &note.DeletedAt, &note.CreatedAt, &note.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	note.Content = content
	return &note, nil
}

func (r *noteRepository) scanNotes(ctx context.Context, rows *sql.Rows) ([]*domain.Note, error) {
	var notes []*domain.Note
	for rows.Next() {
		note, err := r.scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		if err := r.attachRelations(ctx, note); err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notes: %w", err)
	}
	return notes, nil
}

func (r *noteRepository) attachRelations(ctx context.Context, note *domain.Note) error {
	if note.FolderID != nil {
		folder, err := r.fetchFolder(ctx, *note.FolderID)
		if err != nil {
			return err
		}
		note.Folder = folder
	}
	tags, err := r.fetchTags(ctx, note.ID)
	if err != nil {
		return err
	}
	note.Tags = tags
	return nil
}

func (r *noteRepository) fetchFolder(ctx context.Context, folderID uuid.UUID) (*domain.Folder, error) {
	query := `SELECT id, name, user_id, created_at FROM folders WHERE id = $1`
	var folder domain.Folder
	err := r.db.QueryRowContext(ctx, query, folderID).Scan(&folder.ID, &folder.Name, &folder.UserID, &folder.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get folder: %w", err)
	}
	return &folder, nil
}

func (r *noteRepository) fetchTags(ctx context.Context, noteID uuid.UUID) ([]domain.Tag, error) {
	query := `
		SELECT t.id, t.name, t.color, t.user_id, t.created_at
		FROM tags t
		JOIN note_tags nt ON nt.tag_id = t.id
		WHERE nt.note_id = $1
		ORDER BY t.name
	`
	rows, err := r.db.QueryContext(ctx, query, noteID)
	if err != nil {
		return nil, fmt.Errorf("failed to get note tags: %w", err)
	}
	defer rows.Close()

	tags := []domain.Tag{}
	for rows.Next() {
		var tag domain.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Color, &tag.UserID, &tag.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tags: %w", err)
	}
	return tags, nil
}

func (r *noteRepository) fetchLinkedTasks(ctx context.Context, noteID uuid.UUID) ([]domain.Task, error) {
	query := `
		SELECT id, title, done, priority, due_date, user_id, note_id, source, source_id, created_at, updated_at
		FROM tasks
		WHERE note_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, query, noteID)
	if err != nil {
		return nil, fmt.Errorf("failed to get linked tasks: %w", err)
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		var t domain.Task
		err := rows.Scan(&t.ID, &t.Title, &t.Done, &t.Priority, &t.DueDate, &t.UserID,
			&t.NoteID, &t.Source, &t.SourceID, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}
	return tasks, nil
}
