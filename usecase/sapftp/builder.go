package sapftp

import (
	"context"
	"io"
)

type BlobStore interface {
	Upload(ctx context.Context, name string, data []byte, contentType string) error
	Download(ctx context.Context, name string) ([]byte, error)
}

type SapFtpUsecase interface {
	Transform(ctx context.Context, filename string, export io.Reader) (string, error)
	Download(ctx context.Context, filename string) ([]byte, error)
}

type sapFtpUsecase struct {
	blob BlobStore
}

func NewSapFtpUsecase(blob BlobStore) SapFtpUsecase {
	return &sapFtpUsecase{blob: blob}
}
