package handlers

import (
	"errors"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	notificationsmodels "github.com/StanfordSpezi/spezi-firebase-sub000/internal/models/notifications"
)

// RegisterValidators adds the custom binding tags used by the request models.
// It must run before the router serves requests.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding engine is not go-playground/validator")
	}
	return v.RegisterValidation("platform", validatePlatform)
}

// validatePlatform accepts the platforms FCM can deliver to, in any casing.
func validatePlatform(fl validator.FieldLevel) bool {
	switch notificationsmodels.ParsePlatform(fl.Field().String()) {
	case notificationsmodels.PlatformIOS, notificationsmodels.PlatformAndroid:
		return true
	default:
		return false
	}
}
