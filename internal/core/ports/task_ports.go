package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/slate-notes/api/internal/core/domain"
)

type TaskFilters struct {
	Done     *bool
	Priority *domain.TaskPriority
	NoteID   *uuid.UUID
	Search   string
}

type CreateTaskInput struct {
	Title    string
	Done     bool
	Priority domain.TaskPriority
	DueDate  *time.Time
	NoteID   *uuid.UUID
	Source   domain.TaskSource
	SourceID *string
}

type UpdateTaskInput struct {
	Title    *string
	Done     *bool
	Priority *domain.TaskPriority
	DueDate  *time.Time
	// DueDateSet distinguishes "leave the due date alone" from "clear it".
	DueDateSet bool
}

// SyncTaskInput is one embedded task as the client sees it inside the note's
// content, keyed by its client-assigned stable identifier.
type SyncTaskInput struct {
	SourceID string `json:"sourceId"`
	Title    string `json:"title"`
	Done     bool   `json:"done"`
}

type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Task, error)
	List(ctx context.Context, userID uuid.UUID, filters TaskFilters) ([]*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListNoteTasks returns the note-embedded tasks (source=NOTE) of a note.
	ListNoteTasks(ctx context.Context, userID, noteID uuid.UUID) ([]*domain.Task, error)
	// ApplySync applies a computed reconciliation in one transaction.
	ApplySync(ctx context.Context, toDelete []uuid.UUID, toUpdate, toCreate []*domain.Task) error
}

type TaskService interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateTaskInput) (*domain.Task, error)
	List(ctx context.Context, userID uuid.UUID, filters TaskFilters) ([]*domain.Task, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Task, error)
	Update(ctx context.Context, userID, id uuid.UUID, input UpdateTaskInput) (*domain.Task, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	Sync(ctx context.Context, userID, noteID uuid.UUID, incoming []SyncTaskInput) ([]*domain.Task, error)
}
