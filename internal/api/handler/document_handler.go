package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"doc-portal/backend/internal/dto"
	"doc-portal/backend/internal/service"
	"doc-portal/backend/pkg/response"
)

// DocumentHandler student document endpoints.
type DocumentHandler struct {
	docSvc          service.DocumentService
	maxDocumentSize int64
	logger          *zap.Logger
}

// NewDocumentHandler creates a DocumentHandler.
func NewDocumentHandler(docSvc service.DocumentService, maxDocumentSize int64, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{docSvc: docSvc, maxDocumentSize: maxDocumentSize, logger: logger}
}

// List returns the caller's documents, optionally filtered.
// GET /api/documents?status=&type=&course=
func (h *DocumentHandler) List(c *gin.Context) {
	st, ok := MustGetStudent(c)
	if !ok {
		return
	}

	var q dto.DocumentListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.docSvc.GetUserDocuments(c.Request.Context(), st, &q)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, result)
}

// Drafts
// GET /api/documents/drafts
func (h *DocumentHandler) Drafts(c *gin.Context) {
	st, ok := MustGetStudent(c)
	if !ok {
		return
	}

	result, err := h.docSvc.GetDraftDocuments(c.Request.Context(), st)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, result)
}

// Get
// GET /api/documents/:id
func (h *DocumentHandler) Get(c *gin.Context) {
	st, ok := MustGetStudent(c)
	if !ok {
		return
	}

	result, err := h.docSvc.GetDocument(c.Request.Context(), st, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, result)
}

// SaveDraft stores a draft; the file part is optional.
// POST /api/documents/draft
func (h *DocumentHandler) SaveDraft(c *gin.Context) {
	h.create(c, h.docSvc.SaveAsDraft)
}

// Upload stores and submits a document; the file part is required.
// POST /api/documents/upload
func (h *DocumentHandler) Upload(c *gin.Context) {
	h.create(c, h.docSvc.UploadDocument)
}

type createFunc func(ctx context.Context, s service.Student, req *dto.DocumentRequest, file *service.UploadedFile) (*dto.DocumentResponse, error)

func (h *DocumentHandler) create(c *gin.Context, fn createFunc) {
	st, ok := MustGetStudent(c)
	if !ok {
		return
	}

	var req dto.DocumentRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	file, release, err := readUpload(c, "file", h.maxDocumentSize)
	defer release()
	if err != nil {
		respondBindError(c, err)
		return
	}

	result, err := fn(c.Request.Context(), st, &req, file)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Created(c, result)
}

// UpdateDraft edits a draft's fields and optionally replaces its file.
// PUT /api/documents/draft/:id
func (h *DocumentHandler) UpdateDraft(c *gin.Context) {
	st, ok := MustGetStudent(c)
	if !ok {
		return
	}

	var req dto.UpdateDraftRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	file, release, err := readUpload(c, "file", h.maxDocumentSize)
	defer release()
	if err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.docSvc.UpdateDraft(c.Request.Context(), st, c.Param("id"), &req, file)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, result)
}

// Submit
// PUT /api/documents/submit/:id
func (h *DocumentHandler) Submit(c *gin.Context) {
	st, ok := MustGetStudent(c)
	if !ok {
		return
	}

	result, err := h.docSvc.SubmitDraft(c.Request.Context(), st, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, result)
}

// Delete
// DELETE /api/documents/:id
func (h *DocumentHandler) Delete(c *gin.Context) {
	st, ok := MustGetStudent(c)
	if !ok {
		return
	}

	if err := h.docSvc.DeleteDocument(c.Request.Context(), st, c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OKMessage(c, "Document removed")
}
