package service

import (
	"context"

	"go.uber.org/zap"

	"doc-portal/backend/internal/dto"
	"doc-portal/backend/internal/model"
	"doc-portal/backend/internal/repository"
)

const recentDocumentsLimit = 5

// DoctorService doctor-facing views. Every document query is restricted to
// the doctor's courses.
type DoctorService interface {
	GetAllDocuments(ctx context.Context, d Doctor) ([]dto.DocumentResponse, error)
	GetPendingDocuments(ctx context.Context, d Doctor) ([]dto.DocumentResponse, error)
	GetStats(ctx context.Context, d Doctor) (*dto.DoctorStatsResponse, error)
	// GetAllDoctors lists every doctor account, for choosing a message recipient.
	GetAllDoctors(ctx context.Context) ([]dto.UserSummary, error)
}

type doctorService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewDoctorService creates a DoctorService.
func NewDoctorService(repo *repository.Repository, logger *zap.Logger) DoctorService {
	return &doctorService{repo: repo, logger: logger}
}

func (s *doctorService) GetAllDocuments(ctx context.Context, d Doctor) ([]dto.DocumentResponse, error) {
	docs, err := s.repo.Document.List(ctx, repository.DocumentFilter{
		Courses:   d.Courses(),
		WithOwner: true,
	})
	if err != nil {
		s.logger.Error("list course documents failed", zap.Error(err))
		return nil, err
	}
	return toDocumentResponses(docs), nil
}

func (s *doctorService) GetPendingDocuments(ctx context.Context, d Doctor) ([]dto.DocumentResponse, error) {
	docs, err := s.repo.Document.List(ctx, repository.DocumentFilter{
		Courses:   d.Courses(),
		Statuses:  []model.DocumentStatus{model.StatusSubmitted},
		WithOwner: true,
	})
	if err != nil {
		s.logger.Error("list pending documents failed", zap.Error(err))
		return nil, err
	}
	return toDocumentResponses(docs), nil
}

// ────────────────────── GetStats ──────────────────────
//
// A doctor without courses gets zero counts and empty lists.

func (s *doctorService) GetStats(ctx context.Context, d Doctor) (*dto.DoctorStatsResponse, error) {
	courses := d.Courses()
	stats := &dto.DoctorStatsResponse{
		TotalCourses:    len(courses),
		CourseBreakdown: []dto.CourseStats{},
		RecentDocuments: []dto.DocumentResponse{},
	}
	if len(courses) == 0 {
		return stats, nil
	}

	rows, err := s.repo.Document.CountByCourseStatus(ctx, courses)
	if err != nil {
		s.logger.Error("count documents failed", zap.Error(err))
		return nil, err
	}

	byCourse := make(map[string]*dto.CourseStats, len(courses))
	for _, c := range courses {
		byCourse[c] = &dto.CourseStats{Course: c}
	}
	for _, row := range rows {
		cs, ok := byCourse[row.Course]
		if !ok {
			continue
		}
		cs.Total += row.Count
		stats.TotalDocuments += row.Count
		switch row.Status {
		case model.StatusSubmitted:
			cs.Pending += row.Count
			stats.PendingDocuments += row.Count
		case model.StatusApproved:
			cs.Approved += row.Count
			stats.ApprovedDocuments += row.Count
		case model.StatusRejected:
			cs.Rejected += row.Count
			stats.RejectedDocuments += row.Count
		}
	}
	for _, c := range courses {
		stats.CourseBreakdown = append(stats.CourseBreakdown, *byCourse[c])
	}

	stats.TotalStudents, err = s.repo.Account.CountStudentsInCourses(ctx, courses)
	if err != nil {
		s.logger.Error("count students failed", zap.Error(err))
		return nil, err
	}

	recent, err := s.repo.Document.List(ctx, repository.DocumentFilter{
		Courses:   courses,
		WithOwner: true,
		Limit:     recentDocumentsLimit,
	})
	if err != nil {
		s.logger.Error("list recent documents failed", zap.Error(err))
		return nil, err
	}
	stats.RecentDocuments = toDocumentResponses(recent)

	return stats, nil
}

// ────────────────────── GetAllDoctors ──────────────────────

func (s *doctorService) GetAllDoctors(ctx context.Context) ([]dto.UserSummary, error) {
	doctors, err := s.repo.Account.ListByRole(ctx, model.RoleDoctor)
	if err != nil {
		s.logger.Error("list doctors failed", zap.Error(err))
		return nil, err
	}

	result := make([]dto.UserSummary, 0, len(doctors))
	for i := range doctors {
		result = append(result, *toUserSummary(&doctors[i]))
	}
	return result, nil
}
