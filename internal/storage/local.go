package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"doc-portal/backend/config"
)

// LocalStore keeps blobs on the local filesystem. Files are served by the
// router under BaseURL.
type LocalStore struct {
	basePath string
	baseURL  string
}

// NewLocalStore creates the base directory if needed.
func NewLocalStore(cfg *config.StorageConfig) (*LocalStore, error) {
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "./uploads"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	return &LocalStore{basePath: basePath, baseURL: cfg.BaseURL}, nil
}

// BasePath is the directory blobs are written to.
func (s *LocalStore) BasePath() string {
	return s.basePath
}

func (s *LocalStore) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	if _, err := io.Copy(file, r); err != nil {
		file.Close()
		os.Remove(fullPath)
		return fmt.Errorf("write file: %w", err)
	}
	return file.Close()
}

func (s *LocalStore) Delete(ctx context.Context, key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(key))

	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

func (s *LocalStore) URL(key string) string {
	base := s.baseURL
	if base == "" {
		base = "/uploads"
	}
	return joinURL(base, key)
}
