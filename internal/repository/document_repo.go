package repository

import (
	"context"

	"gorm.io/gorm"

	"doc-portal/backend/internal/model"
)

// DocumentFilter narrows document queries. Zero fields are ignored.
type DocumentFilter struct {
	ID       string
	OwnerID  string
	Statuses []model.DocumentStatus
	Type     model.DocumentType
	Course   string
	// Courses restricts results to these course codes. nil means unrestricted;
	// an empty non-nil slice matches nothing.
	Courses   []string
	WithOwner bool
	Limit     int
}

// CourseStatusCount is one row of a per-course status breakdown.
type CourseStatusCount struct {
	Course string
	Status model.DocumentStatus
	Count  int64
}

// DocumentRepository document data access.
type DocumentRepository interface {
	Create(ctx context.Context, doc *model.Document) error
	Update(ctx context.Context, doc *model.Document) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*model.Document, error)
	// FindOne returns the first document matching f, or gorm.ErrRecordNotFound.
	FindOne(ctx context.Context, f DocumentFilter) (*model.Document, error)
	// List returns matching documents, newest first.
	List(ctx context.Context, f DocumentFilter) ([]model.Document, error)
	CountByCourseStatus(ctx context.Context, courses []string) ([]CourseStatusCount, error)
}

type documentRepo struct {
	db *gorm.DB
}

// NewDocumentRepo creates the GORM DocumentRepository.
func NewDocumentRepo(db *gorm.DB) DocumentRepository {
	return &documentRepo{db: db}
}

func (r *documentRepo) Create(ctx context.Context, doc *model.Document) error {
	return r.db.WithContext(ctx).Omit("Owner", "Reviewer").Create(doc).Error
}

func (r *documentRepo) Update(ctx context.Context, doc *model.Document) error {
	return r.db.WithContext(ctx).Omit("Owner", "Reviewer").Save(doc).Error
}

func (r *documentRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Document{}).Error
}

func (r *documentRepo) GetByID(ctx context.Context, id string) (*model.Document, error) {
	var doc model.Document
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepo) FindOne(ctx context.Context, f DocumentFilter) (*model.Document, error) {
	var doc model.Document
	err := applyDocumentFilter(r.db.WithContext(ctx), f).First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepo) List(ctx context.Context, f DocumentFilter) ([]model.Document, error) {
	var docs []model.Document
	db := applyDocumentFilter(r.db.WithContext(ctx), f).Order("created_at DESC")
	if f.Limit > 0 {
		db = db.Limit(f.Limit)
	}
	err := db.Find(&docs).Error
	return docs, err
}

func (r *documentRepo) CountByCourseStatus(ctx context.Context, courses []string) ([]CourseStatusCount, error) {
	var rows []CourseStatusCount
	if len(courses) == 0 {
		return rows, nil
	}
	err := r.db.WithContext(ctx).
		Model(&model.Document{}).
		Select("course, status, COUNT(*) AS count").
		Where("course IN ?", courses).
		Group("course, status").
		Order("course ASC").
		Scan(&rows).Error
	return rows, err
}

func applyDocumentFilter(db *gorm.DB, f DocumentFilter) *gorm.DB {
	if f.ID != "" {
		db = db.Where("id = ?", f.ID)
	}
	if f.OwnerID != "" {
		db = db.Where("owner_id = ?", f.OwnerID)
	}
	if len(f.Statuses) > 0 {
		db = db.Where("status IN ?", f.Statuses)
	}
	if f.Type != "" {
		db = db.Where("type = ?", f.Type)
	}
	if f.Course != "" {
		db = db.Where("course = ?", f.Course)
	}
	if f.Courses != nil {
		if len(f.Courses) == 0 {
			db = db.Where("1 = 0")
		} else {
			db = db.Where("course IN ?", f.Courses)
		}
	}
	if f.WithOwner {
		db = db.Preload("Owner")
	}
	return db
}
