package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/hospitalops/estadia-api/internal/handler"
	apperrors "github.com/hospitalops/estadia-api/pkg/errors"
)

// ErrorHandler converts errors attached to the gin context into the JSON
// error envelope. AppError carries its own status; anything else is a 500
// with the generic message, never the internal error text.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		for _, e := range c.Errors {
			log.Error().
				Err(e.Err).
				Str("path", c.Request.URL.Path).
				Str("method", c.Request.Method).
				Str("request_id", c.GetString(ContextRequestID)).
				Msg("request error")
		}

		lastErr := c.Errors.Last().Err

		if appErr, ok := lastErr.(*apperrors.AppError); ok {
			c.JSON(appErr.StatusCode(), handler.ErrorResponse{Error: appErr.Message})
			return
		}
		c.JSON(http.StatusInternalServerError, handler.ErrorResponse{Error: "Error interno del servidor"})
	}
}
