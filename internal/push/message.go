package push

import (
	"firebase.google.com/go/v4/messaging"

	models "github.com/StanfordSpezi/spezi-firebase-sub000/internal/models/notifications"
)

const (
	titlePlaceholder = "Notification"
	bodyPlaceholder  = ""
	fallbackLanguage = "en"
)

// localize picks the text for the first language that has one, or
// placeholder.
func localize(text models.LocalizedText, placeholder string, languages ...string) string {
	if s, ok := text.Localize(languages...); ok {
		return s
	}
	return placeholder
}

// buildMessage returns the FCM message for one device. Every message carries
// the cross-platform notification; Android devices additionally get the
// notification and data repeated in the Android block, iOS devices an APNs
// alert with the data next to "aps".
func buildMessage(device models.Device, title, body string, data map[string]string) *messaging.Message {
	msg := &messaging.Message{
		Token: device.NotificationToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	switch device.Platform {
	case models.PlatformAndroid:
		msg.Android = &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Title: title,
				Body:  body,
			},
			Data: data,
		}
	case models.PlatformIOS:
		var custom map[string]interface{}
		if len(data) > 0 {
			custom = make(map[string]interface{}, len(data))
			for k, v := range data {
				custom[k] = v
			}
		}
		msg.APNS = &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: title,
						Body:  body,
					},
					Sound: "default",
				},
				CustomData: custom,
			},
		}
	}
	return msg
}
