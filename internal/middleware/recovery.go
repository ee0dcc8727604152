package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Recovery turns a handler panic into a 500 carrying the request ID so the
// client report can be matched to the stack in the logs.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			requestID := GetRequestID(c)
			event := log.Error().
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Str("request_id", requestID).
				Str("route", c.FullPath())
			if account, ok := CurrentAccount(c); ok {
				event = event.Str("account_id", account.ID)
			}
			event.Msg("handler panicked")

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"message":   "internal server error",
				"requestId": requestID,
			})
		}()
		c.Next()
	}
}
