package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Platform identifies the push service a notification token was issued by.
// Stored values have been observed in several casings, so every value passes
// through ParsePlatform before it is compared or persisted.
type Platform string

const (
	PlatformIOS     Platform = "iOS"
	PlatformAndroid Platform = "Android"
)

// ParsePlatform returns the canonical Platform for s. Unknown platforms are
// kept as given, trimmed.
func ParsePlatform(s string) Platform {
	trimmed := strings.TrimSpace(s)
	switch strings.ToLower(trimmed) {
	case "ios":
		return PlatformIOS
	case "android":
		return PlatformAndroid
	default:
		return Platform(trimmed)
	}
}

func (p Platform) String() string {
	return string(p)
}

// UnmarshalJSON normalizes the decoded platform.
func (p *Platform) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = ParsePlatform(raw)
	return nil
}

// Device is the registration payload sent by a client app install.
type Device struct {
	NotificationToken string   `json:"notificationToken" firestore:"notificationToken" binding:"required"`
	Platform          Platform `json:"platform" firestore:"platform" binding:"required,platform"`
	Language          string   `json:"language,omitempty" firestore:"language,omitempty"`
	TimeZone          string   `json:"timeZone,omitempty" firestore:"timeZone,omitempty"`
	OSVersion         string   `json:"osVersion,omitempty" firestore:"osVersion,omitempty"`
	AppVersion        string   `json:"appVersion,omitempty" firestore:"appVersion,omitempty"`
	AppBuild          string   `json:"appBuild,omitempty" firestore:"appBuild,omitempty"`
}

// Normalized returns a copy of d with a canonical platform.
func (d Device) Normalized() Device {
	d.Platform = ParsePlatform(string(d.Platform))
	return d
}

// DeviceRecord is a persisted Device plus storage metadata.
type DeviceRecord struct {
	ID         string    `json:"id"`
	Path       string    `json:"path"`
	LastUpdate time.Time `json:"lastUpdate"`
	Content    Device    `json:"content"`
}
