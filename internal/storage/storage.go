package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"go.uber.org/zap"

	"doc-portal/backend/config"
	"doc-portal/backend/pkg/metrics"
)

var (
	// ErrInvalidKey is returned for keys that are empty or escape the store root.
	ErrInvalidKey = errors.New("invalid object key")
	// ErrUnavailable is returned while the circuit breaker rejects calls.
	ErrUnavailable = errors.New("blob storage unavailable")
)

// BlobStore is the external file store that hands back a public URL per object.
type BlobStore interface {
	// Put stores the content of r under key.
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// URL returns the public URL of key.
	URL(key string) string
}

// New builds the configured store wrapped in a circuit breaker.
func New(cfg *config.StorageConfig, m *metrics.Metrics, logger *zap.Logger) (BlobStore, error) {
	var (
		store BlobStore
		err   error
	)

	switch cfg.Type {
	case "local":
		store, err = NewLocalStore(cfg)
	case "s3":
		store, err = NewS3Store(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("blob storage ready", zap.String("type", cfg.Type))
	return NewBreaker("blob-storage", store, m, logger), nil
}

// cleanKey validates key and returns it in canonical slash form.
func cleanKey(key string) (string, error) {
	if key == "" {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean("/" + strings.ReplaceAll(key, "\\", "/"))
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." || cleaned != strings.TrimPrefix(key, "/") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
