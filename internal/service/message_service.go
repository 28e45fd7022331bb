package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"doc-portal/backend/internal/dto"
	"doc-portal/backend/internal/model"
	"doc-portal/backend/internal/repository"
	apperr "doc-portal/backend/pkg/errors"
)

var (
	ErrRecipientRequired  = apperr.New(apperr.KindValidation, "Recipient is required")
	ErrContentRequired    = apperr.New(apperr.KindValidation, "Message content is required")
	ErrRecipientNotFound  = apperr.New(apperr.KindNotFound, "Recipient not found")
	ErrRecipientNotDoctor = apperr.New(apperr.KindValidation, "Recipient is not a doctor")
	ErrMessageNotFound    = apperr.New(apperr.KindNotFound, "Message not found")
	ErrSelfMessage        = apperr.New(apperr.KindValidation, "Cannot send a message to yourself")
)

// MessageService direct messages between accounts.
type MessageService interface {
	// SendMessage starts a conversation with a doctor.
	SendMessage(ctx context.Context, p Principal, req *dto.SendMessageRequest) (*dto.MessageResponse, error)
	// ReplyToMessage writes to any account, optionally referencing an earlier
	// message the caller took part in.
	ReplyToMessage(ctx context.Context, p Principal, req *dto.ReplyMessageRequest) (*dto.MessageResponse, error)
	GetInbox(ctx context.Context, p Principal) ([]dto.MessageResponse, error)
	GetConversation(ctx context.Context, p Principal, otherID string) ([]dto.MessageResponse, error)
}

type messageService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewMessageService creates a MessageService.
func NewMessageService(repo *repository.Repository, logger *zap.Logger) MessageService {
	return &messageService{repo: repo, logger: logger}
}

func (s *messageService) SendMessage(ctx context.Context, p Principal, req *dto.SendMessageRequest) (*dto.MessageResponse, error) {
	recipient, content, err := s.prepare(ctx, p, req.To, req.Content)
	if err != nil {
		return nil, err
	}
	if recipient.Role != model.RoleDoctor {
		return nil, ErrRecipientNotDoctor
	}
	return s.store(ctx, p, recipient, content, nil)
}

func (s *messageService) ReplyToMessage(ctx context.Context, p Principal, req *dto.ReplyMessageRequest) (*dto.MessageResponse, error) {
	recipient, content, err := s.prepare(ctx, p, req.To, req.Content)
	if err != nil {
		return nil, err
	}

	var replyTo *string
	if req.ReplyTo != nil && *req.ReplyTo != "" {
		id := *req.ReplyTo
		if _, err := uuid.Parse(id); err != nil {
			return nil, ErrMessageNotFound
		}
		parent, err := s.repo.Message.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrMessageNotFound
			}
			s.logger.Error("load parent message failed", zap.Error(err))
			return nil, err
		}
		if !parent.Involves(p.Account().ID) {
			return nil, ErrMessageNotFound
		}
		replyTo = &parent.ID
	}

	return s.store(ctx, p, recipient, content, replyTo)
}

// prepare validates the common fields and resolves the recipient.
func (s *messageService) prepare(ctx context.Context, p Principal, to, content string) (*model.Account, string, error) {
	to = strings.TrimSpace(to)
	if to == "" {
		return nil, "", ErrRecipientRequired
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, "", ErrContentRequired
	}
	if to == p.Account().ID {
		return nil, "", ErrSelfMessage
	}
	if _, err := uuid.Parse(to); err != nil {
		return nil, "", ErrRecipientNotFound
	}

	recipient, err := s.repo.Account.GetByID(ctx, to)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrRecipientNotFound
		}
		s.logger.Error("load recipient failed", zap.Error(err))
		return nil, "", err
	}
	return recipient, content, nil
}

func (s *messageService) store(ctx context.Context, p Principal, recipient *model.Account, content string, replyTo *string) (*dto.MessageResponse, error) {
	msg := &model.Message{
		FromID:  p.Account().ID,
		ToID:    recipient.ID,
		Content: content,
		ReplyTo: replyTo,
	}
	if err := s.repo.Message.Create(ctx, msg); err != nil {
		s.logger.Error("create message failed", zap.Error(err))
		return nil, err
	}

	msg.From = p.Account()
	resp := toMessageResponse(msg)
	return &resp, nil
}

// GetInbox returns messages addressed to the caller, newest first.
func (s *messageService) GetInbox(ctx context.Context, p Principal) ([]dto.MessageResponse, error) {
	msgs, err := s.repo.Message.ListByRecipient(ctx, p.Account().ID)
	if err != nil {
		s.logger.Error("list inbox failed", zap.Error(err))
		return nil, err
	}
	return toMessageResponses(msgs), nil
}

// GetConversation returns the messages between the caller and otherID,
// oldest first. An unknown account yields an empty list.
func (s *messageService) GetConversation(ctx context.Context, p Principal, otherID string) ([]dto.MessageResponse, error) {
	if _, err := uuid.Parse(otherID); err != nil {
		return []dto.MessageResponse{}, nil
	}
	msgs, err := s.repo.Message.ListConversation(ctx, p.Account().ID, otherID)
	if err != nil {
		s.logger.Error("list conversation failed", zap.Error(err))
		return nil, err
	}
	return toMessageResponses(msgs), nil
}
