package repository

import (
	"context"

	"gorm.io/gorm"

	"doc-portal/backend/internal/model"
)

// MessageRepository message data access. Messages are append-only.
type MessageRepository interface {
	Create(ctx context.Context, msg *model.Message) error
	GetByID(ctx context.Context, id string) (*model.Message, error)
	// ListByRecipient returns messages addressed to accountID, newest first.
	ListByRecipient(ctx context.Context, accountID string) ([]model.Message, error)
	// ListConversation returns messages exchanged between a and b, oldest first.
	ListConversation(ctx context.Context, a, b string) ([]model.Message, error)
}

type messageRepo struct {
	db *gorm.DB
}

// NewMessageRepo creates the GORM MessageRepository.
func NewMessageRepo(db *gorm.DB) MessageRepository {
	return &messageRepo{db: db}
}

func (r *messageRepo) Create(ctx context.Context, msg *model.Message) error {
	return r.db.WithContext(ctx).Omit("From", "To").Create(msg).Error
}

func (r *messageRepo) GetByID(ctx context.Context, id string) (*model.Message, error) {
	var msg model.Message
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepo) ListByRecipient(ctx context.Context, accountID string) ([]model.Message, error) {
	var msgs []model.Message
	err := r.db.WithContext(ctx).
		Preload("From").
		Where("to_id = ?", accountID).
		Order("created_at DESC").
		Find(&msgs).Error
	return msgs, err
}

func (r *messageRepo) ListConversation(ctx context.Context, a, b string) ([]model.Message, error) {
	var msgs []model.Message
	err := r.db.WithContext(ctx).
		Preload("From").
		Where("(from_id = ? AND to_id = ?) OR (from_id = ? AND to_id = ?)", a, b, b, a).
		Order("created_at ASC").
		Find(&msgs).Error
	return msgs, err
}
