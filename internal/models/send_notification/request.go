package models

import (
	notificationsmodels "github.com/StanfordSpezi/spezi-firebase-sub000/internal/models/notifications"
)

// SendNotificationRequest targets the caller unless UserID is set. Title and
// Body accept a plain string or a map of language tag to text.
type SendNotificationRequest struct {
	UserID   string                            `json:"userId,omitempty"`
	Title    notificationsmodels.LocalizedText `json:"title"`
	Body     notificationsmodels.LocalizedText `json:"body"`
	Data     map[string]string                 `json:"data,omitempty"`
	Language string                            `json:"language,omitempty"`
}
