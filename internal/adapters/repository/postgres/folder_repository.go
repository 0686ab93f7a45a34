package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/slate-notes/api/internal/core/domain"
	"github.com/slate-notes/api/internal/core/ports"
)

type folderRepository struct {
	db *sql.DB
}

func NewFolderRepository(db *sql.DB) ports.FolderRepository {
	return &folderRepository{db: db}
}

func (r *folderRepository) Create(ctx context.Context, folder *domain.Folder) error {
	query := `
		INSERT INTO folders (id, name, user_id)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query, folder.ID, folder.Name, folder.UserID).Scan(&folder.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrFolderNameTaken
		}
		return fmt.Errorf("failed to insert folder: %w", err)
	}
	return nil
}

func (r *folderRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Folder, error) {
	query := `SELECT id, name, user_id, created_at FROM folders WHERE id = $1 AND user_id = $2`
	var folder domain.Folder
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(&folder.ID, &folder.Name, &folder.UserID, &folder.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrFolderNotFound
		}
		return nil, fmt.Errorf("failed to get folder: %w", err)
	}
	return &folder, nil
}

func (r *folderRepository) List(ctx context.Context, userID uuid.UUID) ([]*domain.Folder, error) {
	query := `
		SELECT f.id, f.name, f.user_id, f.created_at,
			(SELECT count(*) FROM notes n WHERE n.folder_id = f.id AND n.deleted_at IS NULL) AS note_count
		FROM folders f
		WHERE f.user_id = $1
		ORDER BY f.created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	defer rows.Close()

	var folders []*domain.Folder
	for rows.Next() {
		var folder domain.Folder
		if err := rows.Scan(&folder.ID, &folder.Name, &folder.UserID, &folder.CreatedAt, &folder.NoteCount); err != nil {
			return nil, fmt.Errorf("failed to scan folder: %w", err)
		}
		folders = append(folders, &folder)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating folders: %w", err)
	}
	return folders, nil
}

func (r *folderRepository) Rename(ctx context.Context, id uuid.UUID, name string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE folders SET name = $2 WHERE id = $1`, id, name)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrFolderNameTaken
		}
		return fmt.Errorf("failed to rename folder: %w", err)
	}
	return nil
}

func (r *folderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// notes.folder_id is SET NULL by the constraint, not cascaded.
	_, err := r.db.ExecContext(ctx, `DELETE FROM folders WHERE id = $1`, id)
	return err
}
