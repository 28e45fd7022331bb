package handler

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"doc-portal/backend/internal/api/middleware"
	"doc-portal/backend/internal/api/validator"
	"doc-portal/backend/internal/service"
	apperr "doc-portal/backend/pkg/errors"
	"doc-portal/backend/pkg/response"
)

// respondError maps a service error onto the response envelope. Unclassified
// errors become a generic 500 and are logged with the request.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	msg := apperr.MessageOf(err)

	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		response.BadRequest(c, response.CodeBadRequest, msg)
	case apperr.KindUnauthorized:
		response.Unauthorized(c, response.CodeUnauthorized, msg)
	case apperr.KindForbidden:
		response.Forbidden(c, response.CodeForbidden, msg)
	case apperr.KindNotFound:
		response.NotFound(c, response.CodeNotFound, msg)
	case apperr.KindConflict:
		response.Conflict(c, response.CodeConflict, msg)
	case apperr.KindUploadFailed:
		logger.Warn("upload failed", zap.String("path", c.FullPath()), zap.Error(err))
		response.Error(c, http.StatusBadGateway, response.CodeUploadFailed, msg)
	default:
		_ = c.Error(err)
		logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString("request_id")),
			zap.Error(err),
		)
		response.InternalError(c)
	}
}

// respondBindError answers a request whose payload failed binding.
func respondBindError(c *gin.Context, err error) {
	if middleware.IsTooLarge(err) || errors.Is(err, multipart.ErrMessageTooLarge) {
		response.Error(c, http.StatusRequestEntityTooLarge, response.CodeTooLarge, "File too large")
		return
	}
	response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeBadRequest, "Validation failed", validator.Describe(err))
}

// readUpload returns the named file part, or nil when the request has none.
// The returned release func must always be called.
func readUpload(c *gin.Context, field string, maxBytes int64) (*service.UploadedFile, func(), error) {
	release := func() {
		if c.Request.MultipartForm != nil {
			_ = c.Request.MultipartForm.RemoveAll()
		}
	}

	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, release, nil
		}
		return nil, release, err
	}
	if fh.Size > maxBytes {
		return nil, release, &http.MaxBytesError{Limit: maxBytes}
	}

	f, err := fh.Open()
	if err != nil {
		return nil, release, err
	}

	file := &service.UploadedFile{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Content:     f,
	}
	return file, func() {
		_ = f.Close()
		release()
	}, nil
}
