package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"doc-portal/backend/internal/model"
	"doc-portal/backend/internal/service"
	apperr "doc-portal/backend/pkg/errors"
	"doc-portal/backend/pkg/response"
)

// Context keys set by JWTAuth.
const (
	PrincipalKey = "principal"
	SessionKey   = "session"
	AccountIDKey = "account_id"
	UserIDKey    = "user_id"
	RoleKey      = "role"
)

// JWTAuth verifies the bearer credential in Authorization: Bearer <token> and
// injects the resolved principal into the context.
func JWTAuth(authSvc service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, "No token, authorization denied")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, "Invalid authorization header")
			return
		}

		session, err := authSvc.Verify(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			abortAuth(c, err)
			return
		}

		account := session.Principal.Account()
		c.Set(PrincipalKey, session.Principal)
		c.Set(SessionKey, session)
		c.Set(AccountIDKey, account.ID)
		c.Set(UserIDKey, account.UserID)
		c.Set(RoleKey, string(account.Role))

		c.Next()
	}
}

func abortAuth(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTokenExpired):
		response.Abort(c, http.StatusUnauthorized, response.CodeTokenExpired, apperr.MessageOf(err))
	case apperr.KindOf(err) == apperr.KindUnauthorized:
		response.Abort(c, http.StatusUnauthorized, response.CodeInvalidToken, apperr.MessageOf(err))
	case apperr.KindOf(err) == apperr.KindForbidden:
		response.Abort(c, http.StatusForbidden, response.CodeForbidden, apperr.MessageOf(err))
	default:
		_ = c.Error(err)
		response.Abort(c, http.StatusInternalServerError, response.CodeInternal, "Internal server error")
	}
}

// RequireRole only lets principals of the given roles through. Must run after JWTAuth.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get(PrincipalKey)
		p, ok := v.(service.Principal)
		if !exists || !ok {
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, "Not authenticated")
			return
		}

		role := p.Account().Role
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}

		response.Abort(c, http.StatusForbidden, response.CodeForbidden, "Access denied for role "+string(role))
	}
}
