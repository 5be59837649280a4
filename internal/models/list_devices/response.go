package models

import (
	"time"

	notificationsmodels "github.com/StanfordSpezi/spezi-firebase-sub000/internal/models/notifications"
)

type DeviceResponse struct {
	ID         string                     `json:"id"`
	LastUpdate time.Time                  `json:"lastUpdate"`
	Device     notificationsmodels.Device `json:"device"`
}

type ListDevicesResponse struct {
	Devices []DeviceResponse `json:"devices"`
}
