package push

import (
	"errors"

	"firebase.google.com/go/v4/messaging"
)

// Error codes reported per failed message, named as the Firebase console and
// client SDKs name them.
const (
	ErrCodeTokenNotRegistered = "messaging/registration-token-not-registered"
	ErrCodeInvalidArgument    = "messaging/invalid-argument"
	ErrCodeMismatchedSender   = "messaging/mismatched-credential"
	ErrCodeQuotaExceeded      = "messaging/message-rate-exceeded"
	ErrCodeUnavailable        = "messaging/server-unavailable"
	ErrCodeInternal           = "messaging/internal-error"
	ErrCodeThirdPartyAuth     = "messaging/third-party-auth-error"
	ErrCodeUnknown            = "messaging/unknown-error"
)

// ErrorCode classifies the error of a single send. Errors that carry their own
// code through an ErrorCode() string method report it unchanged.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var coded interface{ ErrorCode() string }
	if errors.As(err, &coded) {
		return coded.ErrorCode()
	}
	switch {
	case messaging.IsUnregistered(err):
		return ErrCodeTokenNotRegistered
	case messaging.IsInvalidArgument(err):
		return ErrCodeInvalidArgument
	case messaging.IsSenderIDMismatch(err):
		return ErrCodeMismatchedSender
	case messaging.IsQuotaExceeded(err):
		return ErrCodeQuotaExceeded
	case messaging.IsUnavailable(err):
		return ErrCodeUnavailable
	case messaging.IsInternal(err):
		return ErrCodeInternal
	case messaging.IsThirdPartyAuthError(err):
		return ErrCodeThirdPartyAuth
	default:
		return ErrCodeUnknown
	}
}
