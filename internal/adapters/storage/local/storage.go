package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Storage writes uploads to a local directory served statically by the HTTP
// layer. It satisfies the FileStorage port where no object store is
// configured.
type Storage struct {
	dir     string
	baseURL string
}

func New(dir, baseURL string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Storage{dir: dir, baseURL: baseURL}, nil
}

func (s *Storage) Save(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	path := filepath.Join(s.dir, filepath.Base(filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write upload: %w", err)
	}
	return s.baseURL + "/" + filepath.Base(filename), nil
}
