package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SizeLimit rejects bodies larger than maxBytes and caps the reader for
// requests that do not declare a length.
func SizeLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, ErrorResponse{
				Code:    http.StatusRequestEntityTooLarge,
				Message: fmt.Sprintf("request body exceeds %d bytes", maxBytes),
				TraceID: c.GetString(ContextRequestID),
			})
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
