package ports

import "context"

// FileStorage accepts a binary blob and returns a public URL for it.
type FileStorage interface {
	Save(ctx context.Context, filename, contentType string, data []byte) (string, error)
}

type UploadResult struct {
	URL string `json:"url"`
}

type UploadService interface {
	UploadImage(ctx context.Context, filename, contentType string, data []byte) (*UploadResult, error)
}
