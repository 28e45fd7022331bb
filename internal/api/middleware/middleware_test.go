package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"doc-portal/backend/internal/dto"
	"doc-portal/backend/internal/model"
	"doc-portal/backend/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubAuth resolves "good-<role>" tokens and fails the rest with err.
type stubAuth struct {
	err error
}

func (s *stubAuth) Register(context.Context, *dto.RegisterRequest) (*dto.AuthResponse, error) {
	return nil, errors.New("not used")
}

func (s *stubAuth) Login(context.Context, *dto.LoginRequest) (*dto.AuthResponse, error) {
	return nil, errors.New("not used")
}

func (s *stubAuth) Verify(_ context.Context, token string) (*service.Session, error) {
	if !strings.HasPrefix(token, "good-") {
		return nil, s.err
	}
	p, err := service.NewPrincipal(&model.Account{
		ID:     "acc-1",
		UserID: "u1",
		Role:   model.Role(strings.TrimPrefix(token, "good-")),
	})
	if err != nil {
		return nil, err
	}
	return &service.Session{Principal: p, TokenID: "jti", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (s *stubAuth) Logout(context.Context, *service.Session) error { return nil }

func (s *stubAuth) Me(context.Context, service.Principal) *dto.UserResponse { return nil }

func protectedRouter(auth service.AuthService, roles ...model.Role) *gin.Engine {
	r := gin.New()
	r.GET("/p", JWTAuth(auth), RequireRole(roles...), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(UserIDKey))
	})
	return r
}

func doGet(r http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		verifyEr error
		status   int
		body     string
	}{
		{"missing header", "", nil, http.StatusUnauthorized, "No token"},
		{"wrong scheme", "Basic abc", nil, http.StatusUnauthorized, "Invalid authorization header"},
		{"expired", "Bearer old", service.ErrTokenExpired, http.StatusUnauthorized, "40101"},
		{"revoked", "Bearer bad", service.ErrTokenRevoked, http.StatusUnauthorized, "40102"},
		{"backend down", "Bearer bad", errors.New("redis down"), http.StatusInternalServerError, "Internal server error"},
		{"valid", "Bearer good-student", nil, http.StatusOK, "u1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := protectedRouter(&stubAuth{err: tt.verifyEr}, model.RoleStudent, model.RoleDoctor)
			w := doGet(r, tt.header)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.body)
		})
	}
}

func TestRequireRole(t *testing.T) {
	r := protectedRouter(&stubAuth{}, model.RoleDoctor)

	assert.Equal(t, http.StatusForbidden, doGet(r, "Bearer good-student").Code)
	assert.Equal(t, http.StatusOK, doGet(r, "Bearer good-doctor").Code)
}

func TestUploadLimit(t *testing.T) {
	r := gin.New()
	r.POST("/up", UploadLimit(1024), func(c *gin.Context) {
		if _, err := c.FormFile("file"); err != nil {
			if IsTooLarge(err) {
				c.Status(http.StatusRequestEntityTooLarge)
				return
			}
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})

	big := httptest.NewRequest(http.MethodPost, "/up", strings.NewReader(strings.Repeat("x", 200<<10)))
	big.Header.Set("Content-Type", "multipart/form-data; boundary=xyz")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

type fakeLimiter struct {
	hits  int
	err   error
	limit int
}

func (f *fakeLimiter) CheckRateLimit(_ context.Context, _ string, limit int, _ time.Duration) (bool, error) {
	f.hits++
	f.limit = limit
	if f.err != nil {
		return false, f.err
	}
	return f.hits <= limit, nil
}

func TestRateLimit(t *testing.T) {
	limiter := &fakeLimiter{}
	r := gin.New()
	r.POST("/login", RateLimit(limiter, 2, time.Minute, zap.NewNop()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)
}

func TestRateLimit_FailsOpen(t *testing.T) {
	for _, limiter := range []RateLimiter{nil, &fakeLimiter{err: errors.New("redis down")}} {
		r := gin.New()
		r.POST("/login", RateLimit(limiter, 1, time.Minute, zap.NewNop()), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		for i := 0; i < 3; i++ {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
			require.Equal(t, http.StatusOK, w.Code)
		}
	}
}

func TestCORS_Preflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:3000/"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.test")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(requestIDKey)) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Len(t, w.Header().Get("X-Request-ID"), 36)
}
