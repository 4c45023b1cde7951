package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hospitalops/estadia-api/internal/handler"
)

// Timeout bounds each request. The proxy-upload endpoint sets its own longer
// deadline through the upstream client, so this only guards local handlers.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)

		done := make(chan struct{})
		go func() {
			c.Next()
			close(done)
		}()

		select {
		case <-done:
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				c.AbortWithStatusJSON(http.StatusGatewayTimeout,
					handler.ErrorResponse{Error: "Tiempo de espera agotado"})
			}
		}
	}
}
