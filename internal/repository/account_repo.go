package repository

import (
	"context"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"doc-portal/backend/internal/model"
)

// AccountRepository account data access.
type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	GetByID(ctx context.Context, id string) (*model.Account, error)
	GetByUserID(ctx context.Context, userID string) (*model.Account, error)
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
	Update(ctx context.Context, account *model.Account) error
	Delete(ctx context.Context, id string) error
	ListByRole(ctx context.Context, role model.Role) ([]model.Account, error)
	// ListStudentsInCourses returns students linked to at least one of courses.
	ListStudentsInCourses(ctx context.Context, courses []string) ([]model.Account, error)
	CountStudentsInCourses(ctx context.Context, courses []string) (int64, error)
}

type accountRepo struct {
	db *gorm.DB
}

// NewAccountRepo creates the GORM AccountRepository.
func NewAccountRepo(db *gorm.DB) AccountRepository {
	return &accountRepo{db: db}
}

func (r *accountRepo) Create(ctx context.Context, account *model.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *accountRepo) GetByID(ctx context.Context, id string) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepo) GetByUserID(ctx context.Context, userID string) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepo) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepo) Update(ctx context.Context, account *model.Account) error {
	return r.db.WithContext(ctx).Save(account).Error
}

func (r *accountRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Account{}).Error
}

func (r *accountRepo) ListByRole(ctx context.Context, role model.Role) ([]model.Account, error) {
	var accounts []model.Account
	err := r.db.WithContext(ctx).
		Where("role = ?", role).
		Order("last_name ASC, first_name ASC").
		Find(&accounts).Error
	return accounts, err
}

func (r *accountRepo) ListStudentsInCourses(ctx context.Context, courses []string) ([]model.Account, error) {
	var accounts []model.Account
	if len(courses) == 0 {
		return accounts, nil
	}
	err := r.db.WithContext(ctx).
		Where("role = ? AND courses && ?", model.RoleStudent, pq.StringArray(courses)).
		Order("last_name ASC, first_name ASC").
		Find(&accounts).Error
	return accounts, err
}

func (r *accountRepo) CountStudentsInCourses(ctx context.Context, courses []string) (int64, error) {
	var count int64
	if len(courses) == 0 {
		return 0, nil
	}
	err := r.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("role = ? AND courses && ?", model.RoleStudent, pq.StringArray(courses)).
		Count(&count).Error
	return count, err
}
