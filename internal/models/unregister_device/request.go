package models

import (
	notificationsmodels "github.com/StanfordSpezi/spezi-firebase-sub000/internal/models/notifications"
)

type UnregisterDeviceRequest struct {
	NotificationToken string                       `json:"notificationToken" binding:"required"`
	Platform          notificationsmodels.Platform `json:"platform" binding:"required,platform"`
}
