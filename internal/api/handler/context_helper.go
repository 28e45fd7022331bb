package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"doc-portal/backend/internal/api/middleware"
	"doc-portal/backend/internal/service"
	"doc-portal/backend/pkg/response"
)

// MustGetPrincipal extracts the principal injected by JWTAuth. On failure it
// writes a 401 and returns false; callers return immediately.
func MustGetPrincipal(c *gin.Context) (service.Principal, bool) {
	v, exists := c.Get(middleware.PrincipalKey)
	if !exists {
		response.Unauthorized(c, response.CodeUnauthorized, "Not authenticated")
		return nil, false
	}
	p, ok := v.(service.Principal)
	if !ok || p == nil {
		response.Unauthorized(c, response.CodeUnauthorized, "Not authenticated")
		return nil, false
	}
	return p, true
}

// MustGetStudent narrows the principal to a student, writing 403 otherwise.
func MustGetStudent(c *gin.Context) (service.Student, bool) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return service.Student{}, false
	}
	st, err := service.AsStudent(p)
	if err != nil {
		response.Error(c, http.StatusForbidden, response.CodeForbidden, err.Error())
		return service.Student{}, false
	}
	return st, true
}

// MustGetDoctor narrows the principal to a doctor, writing 403 otherwise.
func MustGetDoctor(c *gin.Context) (service.Doctor, bool) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return service.Doctor{}, false
	}
	d, err := service.AsDoctor(p)
	if err != nil {
		response.Error(c, http.StatusForbidden, response.CodeForbidden, err.Error())
		return service.Doctor{}, false
	}
	return d, true
}

// MustGetSession extracts the verified session.
func MustGetSession(c *gin.Context) (*service.Session, bool) {
	v, exists := c.Get(middleware.SessionKey)
	s, ok := v.(*service.Session)
	if !exists || !ok || s == nil {
		response.Unauthorized(c, response.CodeUnauthorized, "Not authenticated")
		return nil, false
	}
	return s, true
}
