package service

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"doc-portal/backend/internal/storage"
	apperr "doc-portal/backend/pkg/errors"
)

var (
	ErrUploadFailed = apperr.New(apperr.KindUploadFailed, "File upload failed")
	ErrFileRequired = apperr.New(apperr.KindValidation, "File is required")
)

// UploadedFile is a file part received from a client.
type UploadedFile struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// storedFile is a blob accepted by the store.
type storedFile struct {
	Key  string
	URL  string
	Name string
}

var safeExt = regexp.MustCompile(`^\.[a-z0-9]{1,10}$`)

// fileRelay stages client uploads in a local temp file and forwards them to
// the blob store. The temp file is removed on every path.
type fileRelay struct {
	store   storage.BlobStore
	tempDir string
	logger  *zap.Logger
}

func newFileRelay(store storage.BlobStore, tempDir string, logger *zap.Logger) *fileRelay {
	return &fileRelay{store: store, tempDir: tempDir, logger: logger}
}

// relay stores f under prefix and returns the blob handle.
func (r *fileRelay) relay(ctx context.Context, prefix string, f *UploadedFile) (*storedFile, error) {
	tmp, err := os.CreateTemp(r.tempDir, "upload-*")
	if err != nil {
		r.logger.Error("create temp file failed", zap.Error(err))
		return nil, apperr.Wrap(ErrUploadFailed, err)
	}
	defer r.cleanup(tmp)

	if _, err := io.Copy(tmp, f.Content); err != nil {
		r.logger.Error("stage upload failed", zap.String("file", f.Filename), zap.Error(err))
		return nil, apperr.Wrap(ErrUploadFailed, err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return nil, apperr.Wrap(ErrUploadFailed, err)
	}

	key := path.Join(prefix, uuid.NewString()+extensionOf(f.Filename))
	contentType := f.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if err := r.store.Put(ctx, key, tmp, contentType); err != nil {
		r.logger.Error("blob upload failed", zap.String("key", key), zap.Error(err))
		return nil, apperr.Wrap(ErrUploadFailed, err)
	}

	return &storedFile{Key: key, URL: r.store.URL(key), Name: filepath.Base(f.Filename)}, nil
}

// discard deletes a blob, logging failures.
func (r *fileRelay) discard(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := r.store.Delete(ctx, key); err != nil {
		r.logger.Warn("blob delete failed", zap.String("key", key), zap.Error(err))
	}
}

func (r *fileRelay) cleanup(tmp *os.File) {
	name := tmp.Name()
	if err := tmp.Close(); err != nil {
		r.logger.Warn("close temp file failed", zap.String("path", name), zap.Error(err))
	}
	if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
		r.logger.Warn("remove temp file failed", zap.String("path", name), zap.Error(err))
	}
}

func extensionOf(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if !safeExt.MatchString(ext) {
		return ""
	}
	return ext
}

func strPtr(s string) *string { return &s }

func keyOf(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
