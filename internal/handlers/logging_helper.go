package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/StanfordSpezi/spezi-firebase-sub000/internal/middleware"
)

func logWithContext(logger *zap.SugaredLogger, c *gin.Context, level string, msg string, fields ...interface{}) {
	if logger == nil {
		return
	}
	all := append(middleware.RequestFields(c), fields...)
	switch level {
	case "debug":
		logger.Debugw(msg, all...)
	case "warn":
		logger.Warnw(msg, all...)
	case "error":
		logger.Errorw(msg, all...)
	default:
		logger.Infow(msg, all...)
	}
}

// currentUser returns the uid set by AuthMiddleware and writes a 401 when it
// is missing.
func currentUser(c *gin.Context) (string, bool) {
	uid := c.GetString(middleware.ContextUserID)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return "", false
	}
	return uid, true
}

func (h *DevicesHandler) logError(c *gin.Context, err error, msg string, fields ...interface{}) {
	logWithContext(h.logger, c, "error", msg, append(fields, "error", err)...)
}

func (h *NotificationsHandler) logError(c *gin.Context, err error, msg string, fields ...interface{}) {
	logWithContext(h.logger, c, "error", msg, append(fields, "error", err)...)
}
