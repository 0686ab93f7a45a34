package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/slate-notes/api/internal/core/ports"
)

const maxUploadBytes = 5 * 1024 * 1024

var ErrInvalidUpload = errors.New("invalid upload")

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type uploadService struct {
	storage ports.FileStorage
}

func NewUploadService(storage ports.FileStorage) ports.UploadService {
	return &uploadService{storage: storage}
}

func (s *uploadService) UploadImage(ctx context.Context, filename, contentType string, data []byte) (*ports.UploadResult, error) {
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: only images are allowed", ErrInvalidUpload)
	}
	if len(data) > maxUploadBytes {
		return nil, fmt.Errorf("%w: file size too large, max 5MB allowed", ErrInvalidUpload)
	}

	// Client filenames are untrusted; a fresh name keeps uploads from
	// colliding or escaping the storage root.
	name := uuid.New().String() + ext

	url, err := s.storage.Save(ctx, name, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}
	return &ports.UploadResult{URL: url}, nil
}
