// Package artifact writes the display and audit JSON documents.
package artifact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"ReviewsScanner/internal/domain"
	"ReviewsScanner/internal/ports"
)

const (
	DefaultDisplayPath = "public/reviews.json"
	DefaultAuditPath   = "QA/reviews-verification.json"
)

// ErrArtifactWrite wraps every failure to persist an artifact.
var ErrArtifactWrite = errors.New("artifact write failed")

// FileStore writes artifacts as indented JSON files.
type FileStore struct {
	DisplayPath string
	AuditPath   string
}

var _ ports.ArtifactStore = (*FileStore)(nil)

// NewFileStore falls back to the default paths for empty arguments.
func NewFileStore(displayPath, auditPath string) *FileStore {
	if displayPath == "" {
		displayPath = DefaultDisplayPath
	}
	if auditPath == "" {
		auditPath = DefaultAuditPath
	}
	return &FileStore{DisplayPath: displayPath, AuditPath: auditPath}
}

// WriteOutput persists the display document.
func (s *FileStore) WriteOutput(ctx context.Context, artifact domain.OutputArtifact) error {
	return writeJSON(ctx, s.DisplayPath, artifact)
}

// WriteAudit persists the audit document.
func (s *FileStore) WriteAudit(ctx context.Context, artifact domain.AuditArtifact) error {
	return writeJSON(ctx, s.AuditPath, artifact)
}

// writeJSON creates missing parent directories and replaces path atomically.
func writeJSON(ctx context.Context, path string, v any) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrArtifactWrite, path, err)
	}

	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrArtifactWrite, path, err)
	}
	payload = append(payload, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %w", ErrArtifactWrite, dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrArtifactWrite, path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: %s: %w", ErrArtifactWrite, path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrArtifactWrite, path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrArtifactWrite, path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrArtifactWrite, path, err)
	}
	return nil
}
