package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"stopbonus/internal/clock"
)

// LocalStorage persists files to the local filesystem.
type LocalStorage struct {
	baseDir string
	keys    keyBuilder
}

// NewLocalStorage creates a LocalStorage instance. The directory is created if
// it does not exist.
func NewLocalStorage(baseDir string, clk clock.Clock) (*LocalStorage, error) {
	baseDir = strings.TrimSpace(baseDir)
	if baseDir == "" {
		baseDir = filepath.Join("data", "backups")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &LocalStorage{baseDir: baseDir, keys: newKeyBuilder(clk)}, nil
}

// BaseDir returns the root directory used for storing files.
func (s *LocalStorage) BaseDir() string {
	return s.baseDir
}

// Save writes data under baseDir and returns the slash-separated relative
// path. The file is written to a temp name first and renamed into place.
func (s *LocalStorage) Save(ctx context.Context, data []byte, opts SaveOptions) (string, error) {
	if err := checkSave(ctx, data); err != nil {
		return "", err
	}

	relativePath := s.keys.build(opts)
	absPath := filepath.Join(s.baseDir, filepath.FromSlash(relativePath))
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return "", fmt.Errorf("create dir: %w", err)
	}

	tmp := absPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := os.Rename(tmp, absPath); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("rename file: %w", err)
	}

	return relativePath, nil
}

var _ Storage = (*LocalStorage)(nil)
