package repository

import (
	"context"

	"gorm.io/gorm"

	"doc-portal/backend/internal/model"
)

// StudentProfileRepository student profile data access.
type StudentProfileRepository interface {
	Create(ctx context.Context, profile *model.StudentProfile) error
	GetByStudentID(ctx context.Context, studentID string) (*model.StudentProfile, error)
	GetByAccountID(ctx context.Context, accountID string) (*model.StudentProfile, error)
	ListByAccountIDs(ctx context.Context, accountIDs []string) ([]model.StudentProfile, error)
	Update(ctx context.Context, profile *model.StudentProfile) error
	Delete(ctx context.Context, id string) error
}

type studentProfileRepo struct {
	db *gorm.DB
}

// NewStudentProfileRepo creates the GORM StudentProfileRepository.
func NewStudentProfileRepo(db *gorm.DB) StudentProfileRepository {
	return &studentProfileRepo{db: db}
}

func (r *studentProfileRepo) Create(ctx context.Context, profile *model.StudentProfile) error {
	return r.db.WithContext(ctx).Omit("Account").Create(profile).Error
}

func (r *studentProfileRepo) GetByStudentID(ctx context.Context, studentID string) (*model.StudentProfile, error) {
	var profile model.StudentProfile
	err := r.db.WithContext(ctx).
		Preload("Account").
		Where("student_id = ?", studentID).
		First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *studentProfileRepo) GetByAccountID(ctx context.Context, accountID string) (*model.StudentProfile, error) {
	var profile model.StudentProfile
	err := r.db.WithContext(ctx).
		Preload("Account").
		Where("account_id = ?", accountID).
		First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *studentProfileRepo) ListByAccountIDs(ctx context.Context, accountIDs []string) ([]model.StudentProfile, error) {
	var profiles []model.StudentProfile
	if len(accountIDs) == 0 {
		return profiles, nil
	}
	err := r.db.WithContext(ctx).
		Where("account_id IN ?", accountIDs).
		Find(&profiles).Error
	return profiles, err
}

func (r *studentProfileRepo) Update(ctx context.Context, profile *model.StudentProfile) error {
	return r.db.WithContext(ctx).Omit("Account").Save(profile).Error
}

func (r *studentProfileRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.StudentProfile{}).Error
}

// DoctorProfileRepository doctor profile data access.
type DoctorProfileRepository interface {
	Create(ctx context.Context, profile *model.DoctorProfile) error
	GetByDoctorID(ctx context.Context, doctorID string) (*model.DoctorProfile, error)
	GetByAccountID(ctx context.Context, accountID string) (*model.DoctorProfile, error)
	Update(ctx context.Context, profile *model.DoctorProfile) error
	Delete(ctx context.Context, id string) error
}

type doctorProfileRepo struct {
	db *gorm.DB
}

// NewDoctorProfileRepo creates the GORM DoctorProfileRepository.
func NewDoctorProfileRepo(db *gorm.DB) DoctorProfileRepository {
	return &doctorProfileRepo{db: db}
}

func (r *doctorProfileRepo) Create(ctx context.Context, profile *model.DoctorProfile) error {
	return r.db.WithContext(ctx).Omit("Account").Create(profile).Error
}

func (r *doctorProfileRepo) GetByDoctorID(ctx context.Context, doctorID string) (*model.DoctorProfile, error) {
	var profile model.DoctorProfile
	err := r.db.WithContext(ctx).
		Preload("Account").
		Where("doctor_id = ?", doctorID).
		First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *doctorProfileRepo) GetByAccountID(ctx context.Context, accountID string) (*model.DoctorProfile, error) {
	var profile model.DoctorProfile
	err := r.db.WithContext(ctx).
		Preload("Account").
		Where("account_id = ?", accountID).
		First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *doctorProfileRepo) Update(ctx context.Context, profile *model.DoctorProfile) error {
	return r.db.WithContext(ctx).Omit("Account").Save(profile).Error
}

func (r *doctorProfileRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.DoctorProfile{}).Error
}
