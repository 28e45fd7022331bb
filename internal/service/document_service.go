package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"doc-portal/backend/config"
	"doc-portal/backend/internal/dto"
	"doc-portal/backend/internal/model"
	"doc-portal/backend/internal/repository"
	apperr "doc-portal/backend/pkg/errors"
	"doc-portal/backend/pkg/metrics"
)

var (
	ErrDocumentNotFound     = apperr.New(apperr.KindNotFound, "Document not found")
	ErrTitleRequired        = apperr.New(apperr.KindValidation, "Title is required")
	ErrCourseRequired       = apperr.New(apperr.KindValidation, "Course is required")
	ErrInvalidDocumentType  = apperr.New(apperr.KindValidation, "Invalid document type")
	ErrDocumentNotSubmitted = apperr.New(apperr.KindValidation, "Document has not been submitted for review")
	ErrNotCourseDoctor      = apperr.New(apperr.KindForbidden, "You are not assigned to this document's course")
	ErrAlreadyReviewed      = apperr.New(apperr.KindConflict, "Document has already been reviewed")
)

// DocumentService document lifecycle: draft → submitted → approved | rejected.
type DocumentService interface {
	GetUserDocuments(ctx context.Context, s Student, q *dto.DocumentListQuery) ([]dto.DocumentResponse, error)
	GetDraftDocuments(ctx context.Context, s Student) ([]dto.DocumentResponse, error)
	GetDocument(ctx context.Context, s Student, id string) (*dto.DocumentResponse, error)
	SaveAsDraft(ctx context.Context, s Student, req *dto.DocumentRequest, file *UploadedFile) (*dto.DocumentResponse, error)
	UploadDocument(ctx context.Context, s Student, req *dto.DocumentRequest, file *UploadedFile) (*dto.DocumentResponse, error)
	UpdateDraft(ctx context.Context, s Student, id string, req *dto.UpdateDraftRequest, file *UploadedFile) (*dto.DocumentResponse, error)
	SubmitDraft(ctx context.Context, s Student, id string) (*dto.DocumentResponse, error)
	DeleteDocument(ctx context.Context, s Student, id string) error
	ApproveDocument(ctx context.Context, d Doctor, id string) (*dto.DocumentResponse, error)
	RejectDocument(ctx context.Context, d Doctor, id string) (*dto.DocumentResponse, error)
}

type documentService struct {
	cfg     *config.Config
	repo    *repository.Repository
	relay   *fileRelay
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewDocumentService creates a DocumentService.
func NewDocumentService(
	cfg *config.Config,
	repo *repository.Repository,
	relay *fileRelay,
	m *metrics.Metrics,
	logger *zap.Logger,
) DocumentService {
	return &documentService{
		cfg:     cfg,
		repo:    repo,
		relay:   relay,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// findOwned is the single authorize-and-fetch path for student document
// access. Missing, foreign and wrong-status documents all yield ErrDocumentNotFound.
func (s *documentService) findOwned(ctx context.Context, ownerID, id string, statuses ...model.DocumentStatus) (*model.Document, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrDocumentNotFound
	}

	doc, err := s.repo.Document.FindOne(ctx, repository.DocumentFilter{
		ID:       id,
		OwnerID:  ownerID,
		Statuses: statuses,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		s.logger.Error("load document failed", zap.String("document_id", id), zap.Error(err))
		return nil, err
	}
	return doc, nil
}

// ────────────────────── reads ──────────────────────

func (s *documentService) GetUserDocuments(ctx context.Context, st Student, q *dto.DocumentListQuery) ([]dto.DocumentResponse, error) {
	f := repository.DocumentFilter{OwnerID: st.Account().ID}
	if q != nil {
		if q.Status != "" {
			f.Statuses = []model.DocumentStatus{model.DocumentStatus(q.Status)}
		}
		f.Type = model.DocumentType(q.Type)
		f.Course = strings.TrimSpace(q.Course)
	}

	docs, err := s.repo.Document.List(ctx, f)
	if err != nil {
		s.logger.Error("list documents failed", zap.Error(err))
		return nil, err
	}
	return toDocumentResponses(docs), nil
}

func (s *documentService) GetDraftDocuments(ctx context.Context, st Student) ([]dto.DocumentResponse, error) {
	docs, err := s.repo.Document.List(ctx, repository.DocumentFilter{
		OwnerID:  st.Account().ID,
		Statuses: []model.DocumentStatus{model.StatusDraft},
	})
	if err != nil {
		s.logger.Error("list drafts failed", zap.Error(err))
		return nil, err
	}
	return toDocumentResponses(docs), nil
}

func (s *documentService) GetDocument(ctx context.Context, st Student, id string) (*dto.DocumentResponse, error) {
	doc, err := s.findOwned(ctx, st.Account().ID, id)
	if err != nil {
		return nil, err
	}
	resp := toDocumentResponse(doc)
	return &resp, nil
}

// ────────────────────── create ──────────────────────

func (s *documentService) SaveAsDraft(ctx context.Context, st Student, req *dto.DocumentRequest, file *UploadedFile) (*dto.DocumentResponse, error) {
	return s.create(ctx, st, req, file, model.StatusDraft)
}

func (s *documentService) UploadDocument(ctx context.Context, st Student, req *dto.DocumentRequest, file *UploadedFile) (*dto.DocumentResponse, error) {
	if file == nil {
		return nil, ErrFileRequired
	}
	return s.create(ctx, st, req, file, model.StatusSubmitted)
}

func (s *documentService) create(ctx context.Context, st Student, req *dto.DocumentRequest, file *UploadedFile, status model.DocumentStatus) (*dto.DocumentResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	course := strings.TrimSpace(req.Course)
	if course == "" {
		return nil, ErrCourseRequired
	}
	docType := model.DocumentType(req.Type)
	if !docType.Valid() {
		return nil, ErrInvalidDocumentType
	}

	owner := st.Account()
	doc := &model.Document{
		Title:       title,
		Type:        docType,
		Description: strings.TrimSpace(req.Description),
		Course:      course,
		Status:      status,
		OwnerID:     owner.ID,
	}

	if file != nil {
		stored, err := s.relay.relay(ctx, "documents/"+owner.ID, file)
		if err != nil {
			return nil, err
		}
		doc.FileURL = strPtr(stored.URL)
		doc.FileKey = strPtr(stored.Key)
		doc.FileName = strPtr(stored.Name)
	}

	if err := s.repo.Document.Create(ctx, doc); err != nil {
		s.relay.discard(ctx, keyOf(doc.FileKey))
		s.logger.Error("create document failed", zap.Error(err))
		return nil, err
	}

	s.metrics.Transition(string(status))
	s.logger.Info("document created",
		zap.String("document_id", doc.ID),
		zap.String("owner_id", owner.ID),
		zap.String("status", string(status)),
	)

	resp := toDocumentResponse(doc)
	return &resp, nil
}

// ────────────────────── UpdateDraft ──────────────────────
//
// All changes are applied to a copy. With a new file the sequence is
// upload new blob → persist record → delete old blob; a failed persist removes
// the new blob, so the stored record is never partially updated.

func (s *documentService) UpdateDraft(ctx context.Context, st Student, id string, req *dto.UpdateDraftRequest, file *UploadedFile) (*dto.DocumentResponse, error) {
	current, err := s.findOwned(ctx, st.Account().ID, id, model.StatusDraft)
	if err != nil {
		return nil, err
	}

	next := *current
	if req != nil {
		if req.Title != nil {
			next.Title = strings.TrimSpace(*req.Title)
			if next.Title == "" {
				return nil, ErrTitleRequired
			}
		}
		if req.Type != nil {
			next.Type = model.DocumentType(*req.Type)
			if !next.Type.Valid() {
				return nil, ErrInvalidDocumentType
			}
		}
		if req.Description != nil {
			next.Description = strings.TrimSpace(*req.Description)
		}
		if req.Course != nil {
			next.Course = strings.TrimSpace(*req.Course)
			if next.Course == "" {
				return nil, ErrCourseRequired
			}
		}
	}

	var newKey, oldKey string
	if file != nil {
		stored, err := s.relay.relay(ctx, "documents/"+current.OwnerID, file)
		if err != nil {
			return nil, err
		}
		newKey = stored.Key
		oldKey = keyOf(current.FileKey)
		next.FileURL = strPtr(stored.URL)
		next.FileKey = strPtr(stored.Key)
		next.FileName = strPtr(stored.Name)
	}

	if err := s.repo.Document.Update(ctx, &next); err != nil {
		s.relay.discard(ctx, newKey)
		s.logger.Error("update draft failed", zap.String("document_id", id), zap.Error(err))
		return nil, err
	}

	s.relay.discard(ctx, oldKey)

	resp := toDocumentResponse(&next)
	return &resp, nil
}

// ────────────────────── SubmitDraft ──────────────────────

func (s *documentService) SubmitDraft(ctx context.Context, st Student, id string) (*dto.DocumentResponse, error) {
	doc, err := s.findOwned(ctx, st.Account().ID, id, model.StatusDraft)
	if err != nil {
		return nil, err
	}

	doc.Status = model.StatusSubmitted
	if err := s.repo.Document.Update(ctx, doc); err != nil {
		s.logger.Error("submit draft failed", zap.String("document_id", id), zap.Error(err))
		return nil, err
	}

	s.metrics.Transition(string(model.StatusSubmitted))
	resp := toDocumentResponse(doc)
	return &resp, nil
}

// ────────────────────── DeleteDocument ──────────────────────

func (s *documentService) DeleteDocument(ctx context.Context, st Student, id string) error {
	doc, err := s.findOwned(ctx, st.Account().ID, id)
	if err != nil {
		return err
	}

	if err := s.repo.Document.Delete(ctx, doc.ID); err != nil {
		s.logger.Error("delete document failed", zap.String("document_id", id), zap.Error(err))
		return err
	}

	s.relay.discard(ctx, keyOf(doc.FileKey))
	return nil
}

// ────────────────────── review ──────────────────────

func (s *documentService) ApproveDocument(ctx context.Context, d Doctor, id string) (*dto.DocumentResponse, error) {
	return s.review(ctx, d, id, model.StatusApproved)
}

func (s *documentService) RejectDocument(ctx context.Context, d Doctor, id string) (*dto.DocumentResponse, error) {
	return s.review(ctx, d, id, model.StatusRejected)
}

func (s *documentService) review(ctx context.Context, d Doctor, id string, decision model.DocumentStatus) (*dto.DocumentResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrDocumentNotFound
	}

	doc, err := s.repo.Document.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		s.logger.Error("load document failed", zap.String("document_id", id), zap.Error(err))
		return nil, err
	}

	if !d.Teaches(doc.Course) {
		return nil, ErrNotCourseDoctor
	}
	switch {
	case doc.Status == model.StatusDraft:
		return nil, ErrDocumentNotSubmitted
	case doc.Status.Reviewed() && !s.cfg.Review.AllowReReview:
		return nil, ErrAlreadyReviewed
	}

	now := s.now()
	reviewer := d.Account().ID
	doc.Status = decision
	doc.ReviewedBy = &reviewer
	doc.ReviewedAt = &now

	if err := s.repo.Document.Update(ctx, doc); err != nil {
		s.logger.Error("review document failed", zap.String("document_id", id), zap.Error(err))
		return nil, err
	}

	s.metrics.Transition(string(decision))
	s.logger.Info("document reviewed",
		zap.String("document_id", doc.ID),
		zap.String("reviewer_id", reviewer),
		zap.String("status", string(decision)),
	)

	resp := toDocumentResponse(doc)
	return &resp, nil
}
