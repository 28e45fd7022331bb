package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"doc-portal/backend/config"
	"doc-portal/backend/internal/dto"
	"doc-portal/backend/internal/repository"
	apperr "doc-portal/backend/pkg/errors"
)

// pictureSniffLen bytes are read to detect an image signature.
const pictureSniffLen = 3072

var (
	ErrWrongPassword      = apperr.New(apperr.KindUnauthorized, "Current password is incorrect")
	ErrInvalidPictureType = apperr.New(apperr.KindValidation, "Only JPEG, PNG and GIF images are allowed")
)

// AccountService self-service account maintenance.
type AccountService interface {
	UpdateAccount(ctx context.Context, p Principal, req *dto.UpdateAccountRequest) (*dto.UserResponse, error)
	ChangePassword(ctx context.Context, p Principal, req *dto.ChangePasswordRequest) error
	UploadProfilePicture(ctx context.Context, p Principal, file *UploadedFile) (*dto.UserResponse, error)
}

type accountService struct {
	cfg    *config.Config
	repo   *repository.Repository
	relay  *fileRelay
	logger *zap.Logger
}

// NewAccountService creates an AccountService.
func NewAccountService(cfg *config.Config, repo *repository.Repository, relay *fileRelay, logger *zap.Logger) AccountService {
	return &accountService{cfg: cfg, repo: repo, relay: relay, logger: logger}
}

// ────────────────────── UpdateAccount ──────────────────────

func (s *accountService) UpdateAccount(ctx context.Context, p Principal, req *dto.UpdateAccountRequest) (*dto.UserResponse, error) {
	account := *p.Account()

	if req.FirstName != nil {
		account.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		account.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email != account.Email {
			existing, err := s.repo.Account.GetByEmail(ctx, email)
			if err == nil && existing.ID != account.ID {
				return nil, ErrEmailExists
			} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				s.logger.Error("lookup email failed", zap.Error(err))
				return nil, err
			}
			account.Email = email
		}
	}

	if err := s.repo.Account.Update(ctx, &account); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailExists
		}
		s.logger.Error("update account failed", zap.Error(err))
		return nil, err
	}

	resp := toUserResponse(&account)
	return &resp, nil
}

// ────────────────────── ChangePassword ──────────────────────

func (s *accountService) ChangePassword(ctx context.Context, p Principal, req *dto.ChangePasswordRequest) error {
	account := *p.Account()

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return ErrWrongPassword
	}

	hash, err := hashPassword(req.NewPassword, s.cfg.Auth.BcryptCost)
	if err != nil {
		s.logger.Error("hash password failed", zap.Error(err))
		return err
	}
	account.PasswordHash = hash

	if err := s.repo.Account.Update(ctx, &account); err != nil {
		s.logger.Error("update password failed", zap.Error(err))
		return err
	}

	s.logger.Info("password changed", zap.String("account_id", account.ID))
	return nil
}

// ────────────────────── UploadProfilePicture ──────────────────────
//
// upload new → persist → delete old. If persisting fails the new blob is removed.

func (s *accountService) UploadProfilePicture(ctx context.Context, p Principal, file *UploadedFile) (*dto.UserResponse, error) {
	if file == nil {
		return nil, ErrFileRequired
	}
	if !s.pictureTypeAllowed(file.ContentType) {
		return nil, ErrInvalidPictureType
	}
	if err := s.sniffPicture(file); err != nil {
		return nil, err
	}

	account := *p.Account()
	oldKey := keyOf(account.ProfilePictureKey)

	stored, err := s.relay.relay(ctx, "avatars/"+account.ID, file)
	if err != nil {
		return nil, err
	}

	account.ProfilePicture = strPtr(stored.URL)
	account.ProfilePictureKey = strPtr(stored.Key)

	if err := s.repo.Account.Update(ctx, &account); err != nil {
		s.relay.discard(ctx, stored.Key)
		s.logger.Error("save profile picture failed", zap.Error(err))
		return nil, err
	}

	s.relay.discard(ctx, oldKey)

	resp := toUserResponse(&account)
	return &resp, nil
}

// sniffPicture checks the leading bytes against the allowed picture types and
// rewinds the content so the relay still sees the whole file.
func (s *accountService) sniffPicture(file *UploadedFile) error {
	if file.Content == nil {
		return ErrFileRequired
	}
	head := make([]byte, pictureSniffLen)
	n, err := io.ReadFull(file.Content, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		s.logger.Error("read picture failed", zap.Error(err))
		return ErrUploadFailed
	}
	head = head[:n]

	detected := mimetype.Detect(head)
	if !s.pictureTypeAllowed(detected.String()) {
		s.logger.Warn("picture content does not match an allowed type",
			zap.String("declared", file.ContentType),
			zap.String("detected", detected.String()),
		)
		return ErrInvalidPictureType
	}

	file.ContentType = strings.SplitN(detected.String(), ";", 2)[0]
	file.Content = io.MultiReader(bytes.NewReader(head), file.Content)
	return nil
}

func (s *accountService) pictureTypeAllowed(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	for _, allowed := range s.cfg.Upload.PictureTypes {
		if ct == allowed {
			return true
		}
	}
	return false
}
