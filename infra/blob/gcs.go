package blob

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"github.com/labstack/gommon/log"

	"github.com/radhian/billing-reconciliation/entity"
)

// GCSStore keeps archived reports and FTP output files in one bucket.
type GCSStore struct {
	client *storage.Client
	bucket string
}

func NewGCSStore(ctx context.Context, bucket string) (*GCSStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCSStore{client: client, bucket: bucket}, nil
}

// Upload overwrites the object name with data.
func (s *GCSStore) Upload(ctx context.Context, name string, data []byte, contentType string) error {
	w := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("failed to write object %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize object %s: %w", name, err)
	}

	log.Infof("[Blob] Uploaded gs://%s/%s (%d bytes)", s.bucket, name, len(data))
	return nil
}

func (s *GCSStore) Download(ctx context.Context, name string) ([]byte, error) {
	r, err := s.client.Bucket(s.bucket).Object(name).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("%w: %s", entity.ErrFileNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open object %s: %w", name, err)
	}
	defer r.Close()
	return io.ReadAll(r)
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}
