package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cinefeed/cinefeed/internal/logger"
)

// RequestLogger logs every request and its response status
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip logging for health checks
		if c.Request.URL.Path == "/health" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		logger.DebugStructured("HTTP request",
			logger.String("method", c.Request.Method),
			logger.String("path", c.Request.URL.Path),
			logger.String("query", c.Request.URL.RawQuery),
			logger.String("ip", c.ClientIP()),
			logger.Int("status", c.Writer.Status()),
			logger.Int("size", c.Writer.Size()),
			logger.String("duration", time.Since(start).String()),
		)
	}
}

// ErrorLogger logs errors attached to the request context
func ErrorLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		for _, err := range c.Errors {
			logger.ErrorStructured("request error",
				logger.String("method", c.Request.Method),
				logger.String("path", c.Request.URL.Path),
				logger.Err("error", err.Err),
			)
		}
	}
}
