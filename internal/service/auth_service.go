package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"doc-portal/backend/config"
	"doc-portal/backend/internal/dto"
	"doc-portal/backend/internal/model"
	"doc-portal/backend/internal/repository"
	apperr "doc-portal/backend/pkg/errors"
	"doc-portal/backend/pkg/jwt"
)

var (
	ErrUserIDExists       = apperr.New(apperr.KindConflict, "User ID already exists")
	ErrEmailExists        = apperr.New(apperr.KindConflict, "Email already exists")
	ErrInvalidRole        = apperr.New(apperr.KindValidation, "Role must be student or doctor")
	ErrInvalidCredentials = apperr.New(apperr.KindUnauthorized, "Invalid credentials")
	ErrTokenExpired       = apperr.New(apperr.KindUnauthorized, "Token expired")
	ErrInvalidToken       = apperr.New(apperr.KindUnauthorized, "Invalid token")
	ErrTokenRevoked       = apperr.New(apperr.KindUnauthorized, "Token has been revoked")
	ErrAccountGone        = apperr.New(apperr.KindUnauthorized, "User no longer exists")
)

// Session is a verified bearer credential.
type Session struct {
	Principal Principal
	TokenID   string
	ExpiresAt time.Time
}

// AuthService registration, login and credential verification.
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	// Verify resolves a bearer credential to the account it was issued for.
	Verify(ctx context.Context, token string) (*Session, error)
	// Logout revokes the session's token when a blacklist is configured.
	Logout(ctx context.Context, session *Session) error
	Me(ctx context.Context, p Principal) *dto.UserResponse
}

type authService struct {
	cfg       *config.Config
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService creates an AuthService.
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:       cfg,
		repo:      repo,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		logger:    logger,
	}
}

// ────────────────────── Register ──────────────────────

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	role := model.Role(req.Role)
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	userID := strings.TrimSpace(req.UserID)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.repo.Account.GetByUserID(ctx, userID); err == nil {
		return nil, ErrUserIDExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("lookup user id failed", zap.Error(err))
		return nil, err
	}

	if _, err := s.repo.Account.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("lookup email failed", zap.Error(err))
		return nil, err
	}

	hash, err := hashPassword(req.Password, s.cfg.Auth.BcryptCost)
	if err != nil {
		s.logger.Error("hash password failed", zap.Error(err))
		return nil, err
	}

	account := &model.Account{
		UserID:       userID,
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Role:         role,
		Courses:      model.NormalizeCourses(req.Courses),
	}

	if err := s.repo.Account.Create(ctx, account); err != nil {
		// lost a race against a concurrent registration
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, s.duplicateRegistration(ctx, userID)
		}
		s.logger.Error("create account failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("account registered",
		zap.String("account_id", account.ID),
		zap.String("user_id", account.UserID),
		zap.String("role", string(account.Role)),
	)

	return s.issue(account)
}

// duplicateRegistration names the unique key a racing insert collided on.
// The translated driver error drops the constraint name, so the user ID is
// looked up again; if it is still free the email must be the one taken.
func (s *authService) duplicateRegistration(ctx context.Context, userID string) error {
	if _, err := s.repo.Account.GetByUserID(ctx, userID); err == nil {
		return ErrUserIDExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Warn("lookup user id after conflict failed", zap.Error(err))
		return ErrUserIDExists
	}
	return ErrEmailExists
}

// ────────────────────── Login ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	account, err := s.repo.Account.GetByUserID(ctx, strings.TrimSpace(req.UserID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("lookup account failed", zap.Error(err))
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(account)
}

func (s *authService) issue(account *model.Account) (*dto.AuthResponse, error) {
	token, expiresAt, err := s.jwtMgr.GenerateToken(account.ID, account.UserID, string(account.Role))
	if err != nil {
		s.logger.Error("sign token failed", zap.Error(err))
		return nil, err
	}

	return &dto.AuthResponse{
		Token:     token,
		ExpiresAt: formatTime(expiresAt),
		User:      toUserResponse(account),
	}, nil
}

// ────────────────────── Verify ──────────────────────

func (s *authService) Verify(ctx context.Context, token string) (*Session, error) {
	claims, err := s.jwtMgr.ParseToken(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	if s.blacklist != nil {
		revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			s.logger.Error("check token blacklist failed", zap.Error(err))
			return nil, err
		}
		if revoked {
			return nil, ErrTokenRevoked
		}
	}

	account, err := s.repo.Account.GetByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountGone
		}
		s.logger.Error("resolve account failed", zap.Error(err))
		return nil, err
	}

	principal, err := NewPrincipal(account)
	if err != nil {
		return nil, err
	}

	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	return &Session{Principal: principal, TokenID: claims.ID, ExpiresAt: expiresAt}, nil
}

// ────────────────────── Logout ──────────────────────

func (s *authService) Logout(ctx context.Context, session *Session) error {
	if s.blacklist == nil || session == nil {
		return nil
	}
	if err := s.blacklist.BlacklistToken(ctx, session.TokenID, time.Until(session.ExpiresAt)); err != nil {
		s.logger.Error("blacklist token failed", zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Me ──────────────────────

func (s *authService) Me(_ context.Context, p Principal) *dto.UserResponse {
	resp := toUserResponse(p.Account())
	return &resp
}

func hashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
