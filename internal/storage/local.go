package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes attachments to a directory on disk. Intended for
// development; the server exposes the directory under /uploads.
type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore creates the upload directory if needed.
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}

	return &LocalStore{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Upload writes the object under the store directory.
func (s *LocalStore) Upload(_ context.Context, objectPath, _ string, data []byte) (string, error) {
	full := filepath.Join(s.dir, filepath.FromSlash(objectPath))

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", objectPath, err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", objectPath, err)
	}

	return s.baseURL + "/uploads/" + objectPath, nil
}

// Dir returns the root directory attachments are written to.
func (s *LocalStore) Dir() string {
	return s.dir
}
