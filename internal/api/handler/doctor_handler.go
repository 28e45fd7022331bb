package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"doc-portal/backend/internal/dto"
	"doc-portal/backend/internal/service"
	"doc-portal/backend/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DoctorHandler doctor review, dashboard and profile endpoints.
type DoctorHandler struct {
	doctorSvc  service.DoctorService
	docSvc     service.DocumentService
	exportSvc  service.ExportService
	profileSvc service.ProfileService
	logger     *zap.Logger
}

// NewDoctorHandler creates a DoctorHandler.
func NewDoctorHandler(
	doctorSvc service.DoctorService,
	docSvc service.DocumentService,
	exportSvc service.ExportService,
	profileSvc service.ProfileService,
	logger *zap.Logger,
) *DoctorHandler {
	return &DoctorHandler{
		doctorSvc:  doctorSvc,
		docSvc:     docSvc,
		exportSvc:  exportSvc,
		profileSvc: profileSvc,
		logger:     logger,
	}
}

// ════════════════════════════════════════════════════════════
// Documents
// ════════════════════════════════════════════════════════════

// AllDocuments lists every document in the doctor's courses.
// GET /api/doctor/all-documents
func (h *DoctorHandler) AllDocuments(c *gin.Context) {
	d, ok := MustGetDoctor(c)
	if !ok {
		return
	}

	result, err := h.doctorSvc.GetAllDocuments(c.Request.Context(), d)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, result)
}

// PendingDocuments lists submitted documents awaiting review.
// GET /api/doctor/pending-documents
func (h *DoctorHandler) PendingDocuments(c *gin.Context) {
	d, ok := MustGetDoctor(c)
	if !ok {
		return
	}

	result, err := h.doctorSvc.GetPendingDocuments(c.Request.Context(), d)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, result)
}

// Stats
// GET /api/doctor/stats
func (h *DoctorHandler) Stats(c *gin.Context) {
	d, ok := MustGetDoctor(c)
	if !ok {
		return
	}

	result, err := h.doctorSvc.GetStats(c.Request.Context(), d)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, result)
}

// Export downloads the doctor's course documents as a spreadsheet.
// GET /api/doctor/export
func (h *DoctorHandler) Export(c *gin.Context) {
	d, ok := MustGetDoctor(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportDocuments(c.Request.Context(), d)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// Approve
// PUT /api/doctor/approve-document/:id
func (h *DoctorHandler) Approve(c *gin.Context) {
	d, ok := MustGetDoctor(c)
	if !ok {
		return
	}

	result, err := h.docSvc.ApproveDocument(c.Request.Context(), d, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, result)
}

// Reject
// PUT /api/doctor/reject-document/:id
func (h *DoctorHandler) Reject(c *gin.Context) {
	d, ok := MustGetDoctor(c)
	if !ok {
		return
	}

	result, err := h.docSvc.RejectDocument(c.Request.Context(), d, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, result)
}

// AllDoctors lists doctors for any signed-in account.
// GET /api/doctor/all
func (h *DoctorHandler) AllDoctors(c *gin.Context) {
	result, err := h.doctorSvc.GetAllDoctors(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, result)
}

// ════════════════════════════════════════════════════════════
// Profiles
// ════════════════════════════════════════════════════════════

// CreateProfile
// POST /api/doctor
func (h *DoctorHandler) CreateProfile(c *gin.Context) {
	d, ok := MustGetDoctor(c)
	if !ok {
		return
	}

	var req dto.DoctorProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.profileSvc.CreateDoctorProfile(c.Request.Context(), d, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.Created(c, result)
}

// GetProfile
// GET /api/doctor/:id
func (h *DoctorHandler) GetProfile(c *gin.Context) {
	result, err := h.profileSvc.GetDoctorProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, result)
}

// UpdateProfile
// PUT /api/doctor/:id
func (h *DoctorHandler) UpdateProfile(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.UpdateDoctorProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.profileSvc.UpdateDoctorProfile(c.Request.Context(), p, c.Param("id"), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OK(c, result)
}

// DeleteProfile
// DELETE /api/doctor/:id
func (h *DoctorHandler) DeleteProfile(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	if err := h.profileSvc.DeleteDoctorProfile(c.Request.Context(), p, c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	response.OKMessage(c, "Profile removed")
}

// OfficeHours serves the doctor's office hours as an iCalendar feed.
// GET /api/doctor/:id/office-hours.ics
func (h *DoctorHandler) OfficeHours(c *gin.Context) {
	cal, err := h.profileSvc.OfficeHoursCalendar(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(cal))
}
