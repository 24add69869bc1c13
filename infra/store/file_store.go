package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/labstack/gommon/log"

	"github.com/radhian/billing-reconciliation/consts"
	"github.com/radhian/billing-reconciliation/entity"
)

// ReportStore persists the working snapshot, the finalized report and the
// workflow metadata between pipeline steps.
type ReportStore interface {
	LoadSnapshot(ctx context.Context) (entity.BillingReport, error)
	SaveSnapshot(ctx context.Context, report entity.BillingReport) error
	LoadMetadata(ctx context.Context) (entity.WorkflowMetadata, error)
	SaveMetadata(ctx context.Context, meta entity.WorkflowMetadata) error
	ClearMetadata(ctx context.Context) error
	LoadFinal(ctx context.Context) ([]byte, error)
	SaveFinal(ctx context.Context, records []entity.FinalRecord) error
	ClearFinal(ctx context.Context) error
}

type fileStore struct {
	dir string
}

// NewFileStore keeps every artifact as a file under dir.
func NewFileStore(dir string) (ReportStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir %s: %w", dir, err)
	}
	return &fileStore{dir: dir}, nil
}

func (s *fileStore) LoadSnapshot(ctx context.Context) (entity.BillingReport, error) {
	data, err := os.ReadFile(s.path(consts.SnapshotFileName))
	if errors.Is(err, os.ErrNotExist) {
		return nil, entity.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	return DecodeSnapshot(bytes.NewReader(data))
}

func (s *fileStore) SaveSnapshot(ctx context.Context, report entity.BillingReport) error {
	var buf bytes.Buffer
	if err := EncodeSnapshot(&buf, report); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := s.replace(consts.SnapshotFileName, buf.Bytes()); err != nil {
		return err
	}
	log.Infof("[Store] Snapshot written: %d rows", len(report))
	return nil
}

func (s *fileStore) LoadMetadata(ctx context.Context) (entity.WorkflowMetadata, error) {
	var meta entity.WorkflowMetadata
	data, err := os.ReadFile(s.path(consts.MetadataFileName))
	if errors.Is(err, os.ErrNotExist) {
		return meta, entity.ErrNoMetadata
	}
	if err != nil {
		return meta, fmt.Errorf("failed to open metadata: %w", err)
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return meta, fmt.Errorf("failed to parse metadata: %w", err)
	}
	return meta, nil
}

func (s *fileStore) SaveMetadata(ctx context.Context, meta entity.WorkflowMetadata) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	return s.replace(consts.MetadataFileName, data)
}

func (s *fileStore) ClearMetadata(ctx context.Context) error {
	err := os.Remove(s.path(consts.MetadataFileName))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove metadata: %w", err)
	}
	return nil
}

func (s *fileStore) LoadFinal(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path(consts.FinalReportFileName))
	if errors.Is(err, os.ErrNotExist) {
		return nil, entity.ErrNoFinalReport
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open final report: %w", err)
	}
	return data, nil
}

func (s *fileStore) SaveFinal(ctx context.Context, records []entity.FinalRecord) error {
	var buf bytes.Buffer
	if err := EncodeFinal(&buf, records); err != nil {
		return fmt.Errorf("failed to encode final report: %w", err)
	}
	if err := s.replace(consts.FinalReportFileName, buf.Bytes()); err != nil {
		return err
	}
	log.Infof("[Store] Final report written: %d rows", len(records))
	return nil
}

func (s *fileStore) ClearFinal(ctx context.Context) error {
	err := os.Remove(s.path(consts.FinalReportFileName))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove final report: %w", err)
	}
	return nil
}

func (s *fileStore) path(name string) string {
	return filepath.Join(s.dir, name)
}

// replace writes through a temp file and renames it so readers never see a partial file.
func (s *fileStore) replace(name string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", name, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", name, err)
	}
	if err := os.Rename(tmpName, s.path(name)); err != nil {
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return nil
}
