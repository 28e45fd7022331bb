package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"doc-portal/backend/pkg/response"
)

// BodyLimit caps JSON request bodies at maxBytes. Multipart uploads are
// skipped; their routes carry their own UploadLimit.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil && !isMultipart(c.Request) {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()

		if c.IsAborted() || c.Writer.Written() {
			return
		}
		for _, err := range c.Errors {
			if IsTooLarge(err.Err) {
				response.Error(c, http.StatusRequestEntityTooLarge, response.CodeTooLarge, "Request body too large")
				return
			}
		}
	}
}

// UploadLimit caps a multipart request at maxBytes plus a small allowance for
// the form envelope. Requests that announce a larger body are rejected
// before it is read.
func UploadLimit(maxBytes int64) gin.HandlerFunc {
	limit := maxBytes + multipartOverhead
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			response.Abort(c, http.StatusRequestEntityTooLarge, response.CodeTooLarge, "File too large")
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}

const multipartOverhead = 64 << 10

// IsTooLarge reports whether err comes from a body that exceeded its limit.
func IsTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "request body too large")
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/")
}
