package models

import (
	notificationsmodels "github.com/StanfordSpezi/spezi-firebase-sub000/internal/models/notifications"
)

type RegisterDeviceRequest struct {
	notificationsmodels.Device
}
