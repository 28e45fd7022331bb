package router

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"doc-portal/backend/config"
	"doc-portal/backend/internal/api/handler"
	"doc-portal/backend/internal/api/middleware"
	"doc-portal/backend/internal/model"
	"doc-portal/backend/internal/service"
	"doc-portal/backend/pkg/metrics"
)

// jsonBodyLimit caps non-multipart request bodies.
const jsonBodyLimit = 1 << 20

// Setup builds the Gin engine. limiter may be nil, in which case the auth
// endpoints are not rate limited.
func Setup(
	cfg *config.Config,
	h *handler.Handler,
	authSvc service.AuthService,
	limiter middleware.RateLimiter,
	m *metrics.Metrics,
	reg *prometheus.Registry,
	logger *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics(m))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(jsonBodyLimit))

	// ── health and metrics ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if reg != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))
	}

	// Local blobs are served by the API itself; S3 URLs point at the bucket.
	if cfg.Storage.Type == "local" {
		if prefix := localPrefix(cfg.Storage.BaseURL); prefix != "" {
			r.Static(prefix, cfg.Storage.BasePath)
		}
	}

	authLimit := middleware.RateLimit(limiter, cfg.RateLimit.AuthRequests, cfg.RateLimit.AuthWindow, logger)
	documentUpload := middleware.UploadLimit(cfg.Upload.MaxDocumentSize)
	pictureUpload := middleware.UploadLimit(cfg.Upload.MaxPictureSize)
	student := middleware.RequireRole(model.RoleStudent)
	doctor := middleware.RequireRole(model.RoleDoctor)

	api := r.Group("/api")
	{
		// identity (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authLimit, h.Auth.Register)
			auth.POST("/login", authLimit, h.Auth.Login)
		}

		authorized := api.Group("")
		authorized.Use(middleware.JWTAuth(authSvc))
		{
			// identity
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.PUT("/auth/me", h.Auth.UpdateMe)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)
			authorized.POST("/auth/profile-picture", pictureUpload, h.Auth.UploadProfilePicture)

			// documents
			documents := authorized.Group("/documents", student)
			{
				documents.GET("", h.Document.List)
				documents.GET("/drafts", h.Document.Drafts)
				documents.GET("/:id", h.Document.Get)
				documents.POST("/draft", documentUpload, h.Document.SaveDraft)
				documents.POST("/upload", documentUpload, h.Document.Upload)
				documents.PUT("/draft/:id", documentUpload, h.Document.UpdateDraft)
				documents.PUT("/submit/:id", h.Document.Submit)
				documents.DELETE("/:id", h.Document.Delete)
			}

			// doctor review and dashboard; profile routes check ownership in the service
			doctors := authorized.Group("/doctor")
			{
				doctors.GET("/all-documents", doctor, h.Doctor.AllDocuments)
				doctors.GET("/pending-documents", doctor, h.Doctor.PendingDocuments)
				doctors.GET("/stats", doctor, h.Doctor.Stats)
				doctors.GET("/export", doctor, h.Doctor.Export)
				doctors.PUT("/approve-document/:id", doctor, h.Doctor.Approve)
				doctors.PUT("/reject-document/:id", doctor, h.Doctor.Reject)
				doctors.GET("/all", h.Doctor.AllDoctors)

				doctors.POST("", doctor, h.Doctor.CreateProfile)
				doctors.GET("/:id", h.Doctor.GetProfile)
				doctors.PUT("/:id", h.Doctor.UpdateProfile)
				doctors.DELETE("/:id", h.Doctor.DeleteProfile)
				doctors.GET("/:id/office-hours.ics", h.Doctor.OfficeHours)
			}

			// student profiles
			students := authorized.Group("/students")
			{
				students.GET("", doctor, h.Student.List)
				students.POST("", student, h.Student.Create)
				students.GET("/:id", h.Student.Get)
				students.PUT("/:id", h.Student.Update)
				students.DELETE("/:id", h.Student.Delete)
			}

			// messages
			messages := authorized.Group("/messages")
			{
				messages.POST("", h.Message.Send)
				messages.POST("/reply", h.Message.Reply)
				messages.GET("/doctor", doctor, h.Message.DoctorInbox)
				messages.GET("/student", student, h.Message.StudentInbox)
				messages.GET("/conversation/:userId", h.Message.Conversation)
			}
		}
	}

	return r
}

// localPrefix extracts the route prefix from the public blob URL base.
func localPrefix(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Path == "" || u.Path == "/" {
		return ""
	}
	return u.Path
}
