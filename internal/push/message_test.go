package push

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	models "github.com/StanfordSpezi/spezi-firebase-sub000/internal/models/notifications"
)

func TestBuildMessage_Android(t *testing.T) {
	data := map[string]string{"type": "reminder"}
	msg := buildMessage(models.Device{NotificationToken: "tok", Platform: models.PlatformAndroid}, "Title", "Body", data)

	assert.Equal(t, "tok", msg.Token)
	assert.Equal(t, "Title", msg.Notification.Title)
	assert.Equal(t, data, msg.Data)
	require.NotNil(t, msg.Android)
	assert.Equal(t, "Title", msg.Android.Notification.Title)
	assert.Equal(t, "Body", msg.Android.Notification.Body)
	assert.Equal(t, data, msg.Android.Data)
	assert.Nil(t, msg.APNS)
}

func TestBuildMessage_IOSKeepsDataBesideAlert(t *testing.T) {
	data := map[string]string{"type": "reminder", "id": "42"}
	msg := buildMessage(models.Device{NotificationToken: "tok", Platform: models.PlatformIOS}, "Title", "Body", data)

	assert.Nil(t, msg.Android)
	require.NotNil(t, msg.APNS)
	require.NotNil(t, msg.APNS.Payload)
	aps := msg.APNS.Payload.Aps
	require.NotNil(t, aps)
	assert.Equal(t, "Title", aps.Alert.Title)
	assert.Equal(t, "Body", aps.Alert.Body)
	assert.Equal(t, map[string]interface{}{"type": "reminder", "id": "42"}, msg.APNS.Payload.CustomData)
}

func TestBuildMessage_IOSWithoutData(t *testing.T) {
	msg := buildMessage(models.Device{NotificationToken: "tok", Platform: models.PlatformIOS}, "Title", "", nil)
	require.NotNil(t, msg.APNS)
	assert.Nil(t, msg.APNS.Payload.CustomData)
}

func TestBuildMessage_OtherPlatformGetsUnifiedBlockOnly(t *testing.T) {
	msg := buildMessage(models.Device{NotificationToken: "tok", Platform: "web"}, "Title", "Body", nil)
	assert.NotNil(t, msg.Notification)
	assert.Nil(t, msg.Android)
	assert.Nil(t, msg.APNS)
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "", ErrorCode(nil))
	assert.Equal(t, ErrCodeTokenNotRegistered, ErrorCode(codedError{ErrCodeTokenNotRegistered}))
	assert.Equal(t, ErrCodeQuotaExceeded, ErrorCode(errors.Join(errors.New("wrapped"), codedError{ErrCodeQuotaExceeded})))
	assert.Equal(t, ErrCodeUnknown, ErrorCode(errors.New("plain")))
}
