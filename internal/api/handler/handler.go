package handler

import (
	"go.uber.org/zap"

	"doc-portal/backend/config"
	"doc-portal/backend/internal/service"
)

// Handler aggregates every HTTP handler.
type Handler struct {
	Auth     *AuthHandler
	Document *DocumentHandler
	Doctor   *DoctorHandler
	Student  *StudentHandler
	Message  *MessageHandler
}

// NewHandler wires the handlers to the services.
func NewHandler(cfg *config.Config, svc *service.Service, logger *zap.Logger) *Handler {
	return &Handler{
		Auth:     NewAuthHandler(svc.Auth, svc.Account, cfg.Upload.MaxPictureSize, logger),
		Document: NewDocumentHandler(svc.Document, cfg.Upload.MaxDocumentSize, logger),
		Doctor:   NewDoctorHandler(svc.Doctor, svc.Document, svc.Export, svc.Profile, logger),
		Student:  NewStudentHandler(svc.Profile, logger),
		Message:  NewMessageHandler(svc.Message, logger),
	}
}
