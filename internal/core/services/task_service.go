package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/slate-notes/api/internal/core/domain"
	"github.com/slate-notes/api/internal/core/ports"
)

type taskService struct {
	taskRepo ports.TaskRepository
	noteRepo ports.NoteRepository
}

func NewTaskService(taskRepo ports.TaskRepository, noteRepo ports.NoteRepository) ports.TaskService {
	return &taskService{
		taskRepo: taskRepo,
		noteRepo: noteRepo,
	}
}

func (s *taskService) Create(ctx context.Context, userID uuid.UUID, input ports.CreateTaskInput) (*domain.Task, error) {
	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	source := input.Source
	if source == "" {
		source = domain.SourceStandalone
	}

	task := &domain.Task{
		ID:       uuid.New(),
		Title:    input.Title,
		Done:     input.Done,
		Priority: priority,
		DueDate:  input.DueDate,
		UserID:   userID,
		NoteID:   input.NoteID,
		Source:   source,
		SourceID: input.SourceID,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}

	return s.taskRepo.GetByID(ctx, userID, task.ID)
}

func (s *taskService) List(ctx context.Context, userID uuid.UUID, filters ports.TaskFilters) ([]*domain.Task, error) {
	return s.taskRepo.List(ctx, userID, filters)
}

func (s *taskService) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Task, error) {
	return s.taskRepo.GetByID(ctx, userID, id)
}

func (s *taskService) Update(ctx context.Context, userID, id uuid.UUID, input ports.UpdateTaskInput) (*domain.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.Done != nil {
		task.Done = *input.Done
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.DueDateSet {
		task.DueDate = input.DueDate
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.taskRepo.GetByID(ctx, userID, id)
}

func (s *taskService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.taskRepo.GetByID(ctx, userID, id); err != nil {
		return err
	}
	return s.taskRepo.Delete(ctx, id)
}

// Sync reconciles the note's embedded tasks against the incoming list: tasks
// absent from it are deleted, matches get their title/done updated (priority
// and due date are left alone), and the rest are created. A pure set-diff on
// sourceId, not a merge.
func (s *taskService) Sync(ctx context.Context, userID, noteID uuid.UUID, incoming []ports.SyncTaskInput) ([]*domain.Task, error) {
	if _, err := s.noteRepo.GetByID(ctx, userID, noteID); err != nil {
		return nil, err
	}

	existing, err := s.taskRepo.ListNoteTasks(ctx, userID, noteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list note tasks: %w", err)
	}

	existingBySource := make(map[string]*domain.Task, len(existing))
	for _, t := range existing {
		if t.SourceID != nil {
			existingBySource[*t.SourceID] = t
		}
	}

	// Last occurrence wins when the client sends a duplicate sourceId, so
	// the reconciled set never holds duplicates.
	incomingBySource := make(map[string]ports.SyncTaskInput, len(incoming))
	order := make([]string, 0, len(incoming))
	for _, in := range incoming {
		if _, seen := incomingBySource[in.SourceID]; !seen {
			order = append(order, in.SourceID)
		}
		incomingBySource[in.SourceID] = in
	}

	var toDelete []uuid.UUID
	for _, t := range existing {
		if t.SourceID == nil {
			continue
		}
		if _, ok := incomingBySource[*t.SourceID]; !ok {
			toDelete = append(toDelete, t.ID)
		}
	}

	var toUpdate, toCreate []*domain.Task
	for _, sourceID := range order {
		in := incomingBySource[sourceID]
		if t, ok := existingBySource[sourceID]; ok {
			t.Title = in.Title
			t.Done = in.Done
			toUpdate = append(toUpdate, t)
			continue
		}
		sid := sourceID
		nid := noteID
		toCreate = append(toCreate, &domain.Task{
			ID:       uuid.New(),
			Title:    in.Title,
			Done:     in.Done,
			Priority: domain.PriorityMedium,
			UserID:   userID,
			NoteID:   &nid,
			Source:   domain.SourceNote,
			SourceID: &sid,
		})
	}

	if err := s.taskRepo.ApplySync(ctx, toDelete, toUpdate, toCreate); err != nil {
		return nil, fmt.Errorf("failed to apply task sync: %w", err)
	}

	return s.taskRepo.ListNoteTasks(ctx, userID, noteID)
}
