package middleware

import (
	"github.com/gin-gonic/gin"
)

// CORS sets permissive headers so the merchant back office can call the API
// from the browser. PATCH is included for terminal and command updates, and
// the correlation headers are exposed so tracing works across origins.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Correlation-Id, X-Request-ID")
		c.Header("Access-Control-Expose-Headers", "X-Correlation-Id, X-Request-ID")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
