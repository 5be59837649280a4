package models

type RegisterDeviceResponse struct {
	Message string `json:"message"`
}
