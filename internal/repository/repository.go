package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository aggregates every data access interface.
type Repository struct {
	Account        AccountRepository
	StudentProfile StudentProfileRepository
	DoctorProfile  DoctorProfileRepository
	Document       DocumentRepository
	Message        MessageRepository

	db *gorm.DB
}

// NewRepository creates the GORM-backed repositories.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Account:        NewAccountRepo(db),
		StudentProfile: NewStudentProfileRepo(db),
		DoctorProfile:  NewDoctorProfileRepo(db),
		Document:       NewDocumentRepo(db),
		Message:        NewMessageRepo(db),
		db:             db,
	}
}

// Transaction runs fn with repositories bound to one database transaction.
// fn's error rolls the transaction back. A Repository assembled without a
// database (in-memory implementations) runs fn directly.
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}
