// README: Request ID middleware; propagates X-Request-ID into the request context.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fleetdispatch/internal/logger"
)

const RequestIDHeader = "X-Request-ID"

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}
