package models

// Notification is a localized push message addressed to a user rather than
// to a single device. Data is delivered unchanged to every device.
type Notification struct {
	Title LocalizedText     `json:"title"`
	Body  LocalizedText     `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// NewNotification builds a Notification from already localized parts.
func NewNotification(title, body LocalizedText, data map[string]string) Notification {
	return Notification{Title: title, Body: body, Data: data}
}
