package middleware

import (
	"net/http"
	"time"

	"github.com/AngeYobo/oxalio/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// NewEnvelope builds the canonical error body for a request. Shared by the
// middleware below and the handler layer so every 4xx/5xx looks the same.
func NewEnvelope(c *gin.Context, status int, message string) apierror.Envelope {
	return apierror.Envelope{
		Timestamp:     time.Now().UTC(),
		Status:        status,
		ErrorName:     http.StatusText(status),
		Message:       message,
		Path:          c.Request.URL.Path,
		ErrorID:       uuid.NewString(),
		CorrelationID: c.GetString(RequestIDKey),
	}
}

// ErrorHandler is a Gin middleware that catches errors handlers attached via
// c.Error but never mapped themselves. It ensures stack traces are NEVER
// exposed to clients.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last()
		env := NewEnvelope(c, http.StatusInternalServerError, "internal server error")
		log.Error().
			Str("request_id", c.GetString(RequestIDKey)).
			Str("error_id", env.ErrorID).
			Str("path", c.FullPath()).
			Str("method", c.Request.Method).
			Err(err.Err).
			Msg("unhandled error")

		c.AbortWithStatusJSON(http.StatusInternalServerError, env)
	}
}

// Recovery handles panics and converts them into 500 responses.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				env := NewEnvelope(c, http.StatusInternalServerError, "internal server error")
				log.Error().
					Str("request_id", c.GetString(RequestIDKey)).
					Str("error_id", env.ErrorID).
					Interface("panic", r).
					Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, env)
			}
		}()
		c.Next()
	}
}

// Logger logs each request with method, path, status, latency, and request_id.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("request_id", c.GetString(RequestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
