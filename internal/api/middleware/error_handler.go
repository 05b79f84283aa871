package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Alekperov-Vitalii/Diplom/internal/api/dto"
)

// ErrorHandlerMiddleware handles errors and formats responses
func ErrorHandlerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()

			logger.Error("request error",
				"error", err.Error(),
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
			)

			if !c.Writer.Written() {
				c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
					Error:     "Internal Server Error",
					Message:   err.Error(),
					Timestamp: time.Now(),
				})
			}
		}
	}
}
