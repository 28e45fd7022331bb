package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"doc-portal/backend/internal/dto"
	"doc-portal/backend/internal/service"
	"doc-portal/backend/pkg/response"
)

// AuthHandler identity and self-service account endpoints.
type AuthHandler struct {
	authSvc        service.AuthService
	accountSvc     service.AccountService
	maxPictureSize int64
	logger         *zap.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(authSvc service.AuthService, accountSvc service.AccountService, maxPictureSize int64, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, accountSvc: accountSvc, maxPictureSize: maxPictureSize, logger: logger}
}

// Register creates an account and signs the caller in.
// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.authSvc.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	response.Created(c, result)
}

// Login
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	response.OK(c, result)
}

// Logout revokes the presented token when revocation is enabled.
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	session, ok := MustGetSession(c)
	if !ok {
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), session); err != nil {
		respondError(c, h.logger, err)
		return
	}

	response.OKMessage(c, "Logged out")
}

// Me
// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	response.OK(c, h.authSvc.Me(c.Request.Context(), p))
}

// UpdateMe
// PUT /api/auth/me
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.accountSvc.UpdateAccount(c.Request.Context(), p, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	response.OK(c, result)
}

// ChangePassword
// PUT /api/auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.accountSvc.ChangePassword(c.Request.Context(), p, &req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	response.OKMessage(c, "Password updated")
}

// UploadProfilePicture replaces the caller's avatar (multipart field "picture").
// POST /api/auth/profile-picture
func (h *AuthHandler) UploadProfilePicture(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	file, release, err := readUpload(c, "picture", h.maxPictureSize)
	defer release()
	if err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.accountSvc.UploadProfilePicture(c.Request.Context(), p, file)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	response.OK(c, result)
}
