package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/hospitalops/estadia-api/internal/handler"
)

// Recovery turns a panic into a 500 with the generic error message.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().
					Interface("error", err).
					Str("stack", string(debug.Stack())).
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Str("request_id", c.GetString(ContextRequestID)).
					Msg("panic recovered")

				c.AbortWithStatusJSON(http.StatusInternalServerError,
					handler.ErrorResponse{Error: "Error interno del servidor"})
			}
		}()
		c.Next()
	}
}
