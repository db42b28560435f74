package middleware

import (
	"frontdesk/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLogger attaches a request-scoped logger to the Gin context so every
// handler logs with the same method, route and client address fields.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := utils.GetLogger().With(
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.String("clientIp", getClientIP(c)),
		)
		c.Set("logger", logger)
		c.Next()
	}
}
