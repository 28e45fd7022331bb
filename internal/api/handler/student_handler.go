package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"doc-portal/backend/internal/dto"
	"doc-portal/backend/internal/service"
	"doc-portal/backend/pkg/response"
)

// StudentHandler student profile endpoints.
type StudentHandler struct {
	profileSvc service.ProfileService
	logger     *zap.Logger
}

// NewStudentHandler creates a StudentHandler.
func NewStudentHandler(profileSvc service.ProfileService, logger *zap.Logger) *StudentHandler {
	return &StudentHandler{profileSvc: profileSvc, logger: logger}
}

// List returns the students enrolled in the doctor's courses.
// GET /api/students
func (h *StudentHandler) List(c *gin.Context) {
	d, ok := MustGetDoctor(c)
	if !ok {
		return
	}

	result, err := h.profileSvc.ListStudents(c.Request.Context(), d)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, result)
}

// Create
// POST /api/students
func (h *StudentHandler) Create(c *gin.Context) {
	st, ok := MustGetStudent(c)
	if !ok {
		return
	}

	var req dto.StudentProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.profileSvc.CreateStudentProfile(c.Request.Context(), st, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Created(c, result)
}

// Get
// GET /api/students/:id
func (h *StudentHandler) Get(c *gin.Context) {
	result, err := h.profileSvc.GetStudentProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, result)
}

// Update
// PUT /api/students/:id
func (h *StudentHandler) Update(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.UpdateStudentProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.profileSvc.UpdateStudentProfile(c.Request.Context(), p, c.Param("id"), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, result)
}

// Delete removes the profile together with its account and documents.
// DELETE /api/students/:id
func (h *StudentHandler) Delete(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	if err := h.profileSvc.DeleteStudentProfile(c.Request.Context(), p, c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OKMessage(c, "Profile removed")
}
