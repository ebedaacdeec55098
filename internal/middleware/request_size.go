package middleware

import (
	"cargo-tracker/pkg/utils"
	"net/http"

	"github.com/gin-gonic/gin"
)

// DefaultMaxRequestSize caps request bodies at 10 MiB.
const DefaultMaxRequestSize = 10 << 20

// RequestSizeLimitMiddleware rejects requests whose declared length exceeds
// maxSize and wraps the body so chunked uploads cannot exceed it either.
func RequestSizeLimitMiddleware(maxSize int64) gin.HandlerFunc {
	if maxSize <= 0 {
		maxSize = DefaultMaxRequestSize
	}

	return func(c *gin.Context) {
		if c.Request.ContentLength > maxSize {
			utils.ErrorResponse(c, http.StatusRequestEntityTooLarge, "Request body too large")
			c.Abort()
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}
