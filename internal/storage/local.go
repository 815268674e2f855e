package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalArchive stores blobs on the local filesystem.
type LocalArchive struct {
	basePath string
}

func NewLocalArchive(basePath string) *LocalArchive {
	return &LocalArchive{basePath: basePath}
}

func (a *LocalArchive) Put(ctx context.Context, key string, data []byte) error {
	fullPath := filepath.Join(a.basePath, key)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

func (a *LocalArchive) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(a.basePath, key))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

func (a *LocalArchive) Exists(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(filepath.Join(a.basePath, key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check file existence: %w", err)
	}
	return true, nil
}

func (a *LocalArchive) Delete(ctx context.Context, key string) error {
	if err := os.Remove(filepath.Join(a.basePath, key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

var _ Archive = (*LocalArchive)(nil)
