package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"doc-portal/backend/config"
	"doc-portal/backend/internal/repository"
	"doc-portal/backend/internal/storage"
	"doc-portal/backend/pkg/jwt"
	"doc-portal/backend/pkg/metrics"
)

// TokenBlacklist revokes bearer credentials before their natural expiry.
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// Service aggregates every business service.
type Service struct {
	Auth     AuthService
	Account  AccountService
	Document DocumentService
	Doctor   DoctorService
	Export   ExportService
	Profile  ProfileService
	Message  MessageService
}

// NewService wires the services. blacklist may be nil when Redis is disabled.
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	store storage.BlobStore,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Service {
	relay := newFileRelay(store, cfg.Server.TempDir, logger)

	return &Service{
		Auth:     NewAuthService(cfg, repo, jwtMgr, blacklist, logger),
		Account:  NewAccountService(cfg, repo, relay, logger),
		Document: NewDocumentService(cfg, repo, relay, m, logger),
		Doctor:   NewDoctorService(repo, logger),
		Export:   NewExportService(repo, logger),
		Profile:  NewProfileService(cfg, repo, relay, logger),
		Message:  NewMessageService(repo, logger),
	}
}
