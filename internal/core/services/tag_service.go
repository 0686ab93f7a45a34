package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/slate-notes/api/internal/core/domain"
	"github.com/slate-notes/api/internal/core/ports"
)

type tagService struct {
	repo ports.TagRepository
}

func NewTagService(repo ports.TagRepository) ports.TagService {
	return &tagService{repo: repo}
}

func (s *tagService) Create(ctx context.Context, userID uuid.UUID, name, color string) (*domain.Tag, error) {
	if color == "" {
		color = domain.DefaultTagColor
	}
	tag := &domain.Tag{
		ID:     uuid.New(),
		Name:   name,
		Color:  color,
		UserID: userID,
	}
	if err := s.repo.Create(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

func (s *tagService) List(ctx context.Context, userID uuid.UUID) ([]*domain.Tag, error) {
	return s.repo.List(ctx, userID)
}

func (s *tagService) Update(ctx context.Context, userID, id uuid.UUID, input ports.UpdateTagInput) (*domain.Tag, error) {
	tag, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		tag.Name = *input.Name
	}
	if input.Color != nil {
		tag.Color = *input.Color
	}
	if err := s.repo.Update(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

func (s *tagService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, userID, id); err != nil {
		return err
	}
	// Join rows on notes and tasks cascade away with the tag.
	return s.repo.Delete(ctx, id)
}
