package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDKey        = "request_id"
	CorrelationIDHeader = "X-Correlation-Id"
	RequestIDHeader     = "X-Request-ID"
)

// RequestID attaches a correlation id to every request. An id supplied by the
// caller in X-Correlation-Id (or its X-Request-ID alias) is kept so POS
// terminals can trace a call end to end; otherwise one is generated. The id is
// echoed back in both response headers and stamped on every error envelope and
// log line.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(CorrelationIDHeader)
		if id == "" {
			id = c.GetHeader(RequestIDHeader)
		}
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Header(CorrelationIDHeader, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
