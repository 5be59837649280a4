package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/StanfordSpezi/spezi-firebase-sub000/internal/middleware"
	notificationstatsmodels "github.com/StanfordSpezi/spezi-firebase-sub000/internal/models/notification_stats"
	notificationsmodels "github.com/StanfordSpezi/spezi-firebase-sub000/internal/models/notifications"
	sendnotificationmodels "github.com/StanfordSpezi/spezi-firebase-sub000/internal/models/send_notification"
	"github.com/StanfordSpezi/spezi-firebase-sub000/internal/push"
)

type notificationDispatcher interface {
	SendNotification(ctx context.Context, userID string, n notificationsmodels.Notification, language string) (*push.Result, error)
}

// StatsReader is satisfied by *push.RedisStats.
type StatsReader interface {
	Weekly(ctx context.Context, userID string) (push.Stats, error)
}

type NotificationsHandler struct {
	dispatcher notificationDispatcher
	stats      StatsReader
	logger     *zap.SugaredLogger
}

// NewNotificationsHandler creates a new notifications handler. stats may be
// nil when no Redis is configured.
func NewNotificationsHandler(dispatcher notificationDispatcher, stats StatsReader, logger *zap.SugaredLogger) *NotificationsHandler {
	return &NotificationsHandler{dispatcher: dispatcher, stats: stats, logger: logger}
}

// SendNotification delivers a notification to every device of the target
// user. Targeting another user requires the admin claim.
func (h *NotificationsHandler) SendNotification(c *gin.Context) {
	var req sendnotificationmodels.SendNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if req.Title.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}

	uid, ok := currentUser(c)
	if !ok {
		return
	}

	target := req.UserID
	if target == "" {
		target = uid
	}
	if target != uid && !c.GetBool(middleware.ContextAdmin) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed to notify other users"})
		return
	}

	n := notificationsmodels.NewNotification(req.Title, req.Body, req.Data)
	result, err := h.dispatcher.SendNotification(c.Request.Context(), target, n, req.Language)
	if err != nil {
		h.logError(c, err, "failed to send notification", "target_user_id", target)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send notification"})
		return
	}

	resp := sendnotificationmodels.SendNotificationResponse{
		UserID:        target,
		Devices:       result.Devices,
		Sent:          result.Sent,
		Failed:        result.Failed,
		InvalidTokens: result.InvalidTokens,
	}
	for _, f := range result.Failures {
		resp.Failures = append(resp.Failures, sendnotificationmodels.FailureResponse{DeviceID: f.DeviceID, Code: f.Code})
	}
	c.JSON(http.StatusOK, resp)
}

// GetNotificationStats returns the caller's delivery counters for the last
// seven days
func (h *NotificationsHandler) GetNotificationStats(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}

	resp := notificationstatsmodels.NotificationStatsResponse{UserID: uid}
	if h.stats == nil {
		c.JSON(http.StatusOK, resp)
		return
	}

	stats, err := h.stats.Weekly(c.Request.Context(), uid)
	if err != nil {
		h.logError(c, err, "failed to read notification stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read notification stats"})
		return
	}
	resp.Sent = stats.Sent
	resp.Failed = stats.Failed
	resp.ActiveDays = stats.ActiveDays
	resp.Enabled = true
	c.JSON(http.StatusOK, resp)
}
