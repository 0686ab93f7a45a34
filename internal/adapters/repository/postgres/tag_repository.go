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

type tagRepository struct {
	db *sql.DB
}

func NewTagRepository(db *sql.DB) ports.TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) Create(ctx context.Context, tag *domain.Tag) error {
	query := `
		INSERT INTO tags (id, name, color, user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query, tag.ID, tag.Name, tag.Color, tag.UserID).Scan(&tag.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrTagNameTaken
		}
		return fmt.Errorf("failed to insert tag: %w", err)
	}
	return nil
}

func (r *tagRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Tag, error) {
	query := `SELECT id, name, color, user_id, created_at FROM tags WHERE id = $1 AND user_id = $2`
	var tag domain.Tag
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(&tag.ID, &tag.Name, &tag.Color, &tag.UserID, &tag.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTagNotFound
		}
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}
	return &tag, nil
}

func (r *tagRepository) List(ctx context.Context, userID uuid.UUID) ([]*domain.Tag, error) {
	query := `
		SELECT t.id, t.name, t.color, t.user_id, t.created_at,
			(SELECT count(*) FROM note_tags nt WHERE nt.tag_id = t.id) AS note_count,
			(SELECT count(*) FROM task_tags tt WHERE tt.tag_id = t.id) AS task_count
		FROM tags t
		WHERE t.user_id = $1
		ORDER BY t.name ASC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	var tags []*domain.Tag
	for rows.Next() {
		var tag domain.Tag
		err := rows.Scan(&tag.ID, &tag.Name, &tag.Color, &tag.UserID, &tag.CreatedAt, &tag.NoteCount, &tag.TaskCount)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, &tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tags: %w", err)
	}
	return tags, nil
}

func (r *tagRepository) Update(ctx context.Context, tag *domain.Tag) error {
	_, err := r.db.ExecContext(ctx, `UPDATE tags SET name = $2, color = $3 WHERE id = $1`, tag.ID, tag.Name, tag.Color)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrTagNameTaken
		}
		return fmt.Errorf("failed to update tag: %w", err)
	}
	return nil
}

func (r *tagRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// note_tags and task_tags rows cascade with the tag.
	_, err := r.db.ExecContext(ctx, `DELETE FROM tags WHERE id = $1`, id)
	return err
}
