package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Recovery turns a handler panic into a 500 ErrorResponse. The panic value is
// logged with the route and staff user but never returned to the client.
// http.ErrAbortHandler is re-raised so net/http can drop the connection.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}

			rid := c.GetString(ContextRequestID)
			log.Error().
				Str("panic", fmt.Sprint(rec)).
				Bytes("stack", debug.Stack()).
				Str("request_id", rid).
				Str("method", c.Request.Method).
				Str("route", c.FullPath()).
				Str("user", c.GetString(ContextUsername)).
				Msg("Handler panicked")

			_ = c.Error(fmt.Errorf("panic: %v", rec))
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
				Code:    http.StatusInternalServerError,
				Message: "Internal server error",
				TraceID: rid,
			})
		}()
		c.Next()
	}
}
