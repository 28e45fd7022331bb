package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"doc-portal/backend/internal/dto"
	"doc-portal/backend/internal/service"
	"doc-portal/backend/pkg/response"
)

// MessageHandler messaging endpoints.
type MessageHandler struct {
	msgSvc service.MessageService
	logger *zap.Logger
}

// NewMessageHandler creates a MessageHandler.
func NewMessageHandler(msgSvc service.MessageService, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{msgSvc: msgSvc, logger: logger}
}

// Send writes a message to a doctor.
// POST /api/messages
func (h *MessageHandler) Send(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.msgSvc.SendMessage(c.Request.Context(), p, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Created(c, result)
}

// Reply
// POST /api/messages/reply
func (h *MessageHandler) Reply(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.ReplyMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.msgSvc.ReplyToMessage(c.Request.Context(), p, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Created(c, result)
}

// DoctorInbox
// GET /api/messages/doctor
func (h *MessageHandler) DoctorInbox(c *gin.Context) {
	d, ok := MustGetDoctor(c)
	if !ok {
		return
	}
	h.inbox(c, d)
}

// StudentInbox
// GET /api/messages/student
func (h *MessageHandler) StudentInbox(c *gin.Context) {
	st, ok := MustGetStudent(c)
	if !ok {
		return
	}
	h.inbox(c, st)
}

func (h *MessageHandler) inbox(c *gin.Context, p service.Principal) {
	result, err := h.msgSvc.GetInbox(c.Request.Context(), p)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, result)
}

// Conversation returns both directions between the caller and another account.
// GET /api/messages/conversation/:userId
func (h *MessageHandler) Conversation(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	result, err := h.msgSvc.GetConversation(c.Request.Context(), p, c.Param("userId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, result)
}
