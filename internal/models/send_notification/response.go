package models

type FailureResponse struct {
	DeviceID string `json:"deviceId"`
	Code     string `json:"code"`
}

type SendNotificationResponse struct {
	UserID        string            `json:"userId"`
	Devices       int               `json:"devices"`
	Sent          int               `json:"sent"`
	Failed        int               `json:"failed"`
	InvalidTokens []string          `json:"invalidTokens,omitempty"`
	Failures      []FailureResponse `json:"failures,omitempty"`
}
