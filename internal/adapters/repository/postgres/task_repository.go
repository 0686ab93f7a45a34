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

type taskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) ports.TaskRepository {
	return &taskRepository{db: db}
}

const taskColumns = `id, title, done, priority, due_date, user_id, note_id, source, source_id, created_at, updated_at`

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	query := `
		INSERT INTO tasks (id, title, done, priority, due_date, user_id, note_id, source, source_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		task.ID, task.Title, task.Done, task.Priority, task.DueDate,
		task.UserID, task.NoteID, task.Source, task.SourceID,
	).Scan(&task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

func (r *taskRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND user_id = $2`
	task, err := scanTask(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	tags, err := r.fetchTags(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	task.Tags = tags
	return task, nil
}

func (r *taskRepository) List(ctx context.Context, userID uuid.UUID, f ports.TaskFilters) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1`
	args := []any{userID}

	if f.Done != nil {
		args = append(args, *f.Done)
		query += fmt.Sprintf(" AND done = $%d", len(args))
	}
	if f.Priority != nil {
		args = append(args, *f.Priority)
		query += fmt.Sprintf(" AND priority = $%d", len(args))
	}
	if f.NoteID != nil {
		args = append(args, *f.NoteID)
		query += fmt.Sprintf(" AND note_id = $%d", len(args))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		query += fmt.Sprintf(" AND title ILIKE $%d", len(args))
	}

	query += " ORDER BY done ASC, due_date ASC NULLS LAST, created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	return r.scanTasks(ctx, rows)
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	query := `
		UPDATE tasks
		SET title = $2, done = $3, priority = $4, due_date = $5, updated_at = now()
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, task.ID, task.Title, task.Done, task.Priority, task.DueDate)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	return err
}

func (r *taskRepository) ListNoteTasks(ctx context.Context, userID, noteID uuid.UUID) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE user_id = $1 AND note_id = $2 AND source = $3
		ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, userID, noteID, domain.SourceNote)
	if err != nil {
		return nil, fmt.Errorf("failed to list note tasks: %w", err)
	}
	defer rows.Close()

	return r.scanTasks(ctx, rows)
}

// ApplySync applies a computed reconciliation atomically: a crash mid-sync
// must not leave the note's embedded tasks half reconciled.
func (r *taskRepository) ApplySync(ctx context.Context, toDelete []uuid.UUID, toUpdate, toCreate []*domain.Task) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, id := range toDelete {
		if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}
	}

	updateQuery := `UPDATE tasks SET title = $2, done = $3, updated_at = now() WHERE id = $1`
	for _, t := range toUpdate {
		if _, err := tx.ExecContext(ctx, updateQuery, t.ID, t.Title, t.Done); err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
	}

	createQuery := `
		INSERT INTO tasks (id, title, done, priority, user_id, note_id, source, source_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for _, t := range toCreate {
		_, err := tx.ExecContext(ctx, createQuery, t.ID, t.Title, t.Done, t.Priority, t.UserID, t.NoteID, t.Source, t.SourceID)
		if err != nil {
			return fmt.Errorf("failed to insert task: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var t domain.Task
	err := row.Scan(&t.ID, &t.Title, &t.Done, &t.Priority, &t.DueDate, &t.UserID,
		&t.NoteID, &t.Source, &t.SourceID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *taskRepository) scanTasks(ctx context.Context, rows *sql.Rows) ([]*domain.Task, error) {
	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tags, err := r.fetchTags(ctx, task.ID)
		if err != nil {
			return nil, err
		}
		task.Tags = tags
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}
	return tasks, nil
}

func (r *taskRepository) fetchTags(ctx context.Context, taskID uuid.UUID) ([]domain.Tag, error) {
	query := `
		SELECT t.id, t.name, t.color, t.user_id, t.created_at
		FROM tags t
		JOIN task_tags tt ON tt.tag_id = t.id
		WHERE tt.task_id = $1
		ORDER BY t.name
	`
	rows, err := r.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task tags: %w", err)
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
