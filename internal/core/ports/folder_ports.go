package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/slate-notes/api/internal/core/domain"
)

type FolderRepository interface {
	Create(ctx context.Context, folder *domain.Folder) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Folder, error)
	List(ctx context.Context, userID uuid.UUID) ([]*domain.Folder, error)
	Rename(ctx context.Context, id uuid.UUID, name string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type FolderService interface {
	Create(ctx context.Context, userID uuid.UUID, name string) (*domain.Folder, error)
	List(ctx context.Context, userID uuid.UUID) ([]*domain.Folder, error)
	Rename(ctx context.Context, userID, id uuid.UUID, name string) (*domain.Folder, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
