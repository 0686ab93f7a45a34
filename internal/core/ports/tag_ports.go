package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/slate-notes/api/internal/core/domain"
)

type UpdateTagInput struct {
	Name  *string
	Color *string
}

type TagRepository interface {
	Create(ctx context.Context, tag *domain.Tag) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Tag, error)
	List(ctx context.Context, userID uuid.UUID) ([]*domain.Tag, error)
	Update(ctx context.Context, tag *domain.Tag) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type TagService interface {
	Create(ctx context.Context, userID uuid.UUID, name, color string) (*domain.Tag, error)
	List(ctx context.Context, userID uuid.UUID) ([]*domain.Tag, error)
	Update(ctx context.Context, userID, id uuid.UUID, input UpdateTagInput) (*domain.Tag, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
