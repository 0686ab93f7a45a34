package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/slate-notes/api/internal/core/domain"
	"github.com/slate-notes/api/internal/core/ports"
)

type folderService struct {
	repo ports.FolderRepository
}

func NewFolderService(repo ports.FolderRepository) ports.FolderService {
	return &folderService{repo: repo}
}

func (s *folderService) Create(ctx context.Context, userID uuid.UUID, name string) (*domain.Folder, error) {
	folder := &domain.Folder{
		ID:     uuid.New(),
		Name:   name,
		UserID: userID,
	}
	if err := s.repo.Create(ctx, folder); err != nil {
		return nil, err
	}
	return folder, nil
}

func (s *folderService) List(ctx context.Context, userID uuid.UUID) ([]*domain.Folder, error) {
	return s.repo.List(ctx, userID)
}

func (s *folderService) Rename(ctx context.Context, userID, id uuid.UUID, name string) (*domain.Folder, error) {
	folder, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Rename(ctx, id, name); err != nil {
		return nil, err
	}
	folder.Name = name
	return folder, nil
}

func (s *folderService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, userID, id); err != nil {
		return err
	}
	// Notes keep existing with folder_id nulled by the constraint.
	return s.repo.Delete(ctx, id)
}
