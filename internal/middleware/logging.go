package middleware

import (
	"bytes"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const ContextRequestID = "request_id"

// RequestIDMiddleware ensures every request has a request_id available in headers and context
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.Request.Header.Get("X-Request-ID")
		if rid == "" {
			rid = uuid.New().String()
		}
		c.Set(ContextRequestID, rid)
		c.Writer.Header().Set("X-Request-ID", rid)
		c.Next()
	}
}

// RequestFields returns the key/value pairs identifying the request, for use
// with the zap *w methods.
func RequestFields(c *gin.Context) []interface{} {
	return []interface{}{
		"request_id", c.GetString(ContextRequestID),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"client_ip", c.ClientIP(),
		"user_id", c.GetString(ContextUserID),
	}
}

type bodyLogWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w bodyLogWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// RequestLoggingMiddleware logs every finished request. Error responses are
// logged with their body.
func RequestLoggingMiddleware(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		blw := &bodyLogWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = blw

		c.Next()

		status := c.Writer.Status()
		fields := append(RequestFields(c),
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		)

		switch {
		case status >= 500:
			logger.Errorw("request completed with server error", append(fields, "response", blw.body.String())...)
		case status >= 400:
			logger.Warnw("request completed with client error", append(fields, "response", blw.body.String())...)
		default:
			logger.Infow("request completed", fields...)
		}
	}
}

// RecoveryMiddleware converts panics to 500 responses and logs stack traces with context
func RecoveryMiddleware(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorw("panic recovered",
					append(RequestFields(c), "panic", r, "stack", string(debug.Stack()))...,
				)
				c.AbortWithStatusJSON(500, gin.H{"error": "Internal server error", "request_id": c.GetString(ContextRequestID)})
			}
		}()
		c.Next()
	}
}
