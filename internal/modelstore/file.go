package modelstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/khanglvm/supply-intel/internal/bundle"
)

// FileStore keeps the artifact in a single file.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Location returns the artifact path.
func (s *FileStore) Location() string {
	return s.path
}

// Save writes the bundle with atomic write + backup.
func (s *FileStore) Save(ctx context.Context, b *bundle.Bundle) error {
	data, err := bundle.Encode(b)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	// Backup existing artifact (first save has nothing to back up)
	if err := backupArtifact(s.path); err != nil {
		return fmt.Errorf("failed to back up model artifact: %w", err)
	}

	return atomicWrite(s.path, data)
}

// Load reads the artifact. A missing file returns nil, nil.
func (s *FileStore) Load(ctx context.Context) (*bundle.Bundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read model artifact: %w", err)
	}

	return bundle.Decode(s.path, data)
}

// Close is a no-op for files.
func (s *FileStore) Close() error {
	return nil
}

func backupArtifact(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	return atomicWrite(path+".bak", data)
}

// atomicWrite writes to a temp file in the same directory and renames it
// over path, so readers never observe a partially written artifact.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp artifact: %w", err)
	}
	tmpPath := tmp.Name()

	cleanup := func() {
		tmp.Close()
		os.Remove(tmpPath)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("failed to write temp artifact: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("failed to sync temp artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp artifact: %w", err)
	}

	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set artifact permissions: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace model artifact: %w", err)
	}

	return nil
}
