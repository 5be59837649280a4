// Package push delivers notifications to the registered devices of a user
// through Firebase Cloud Messaging and prunes tokens FCM reports as dead.
package push

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"

	models "github.com/StanfordSpezi/spezi-firebase-sub000/internal/models/notifications"
)

// FCM accepts at most 500 messages per SendEach call.
const maxBatchSize = 500

// Sender is the part of *messaging.Client the dispatcher uses.
type Sender interface {
	SendEach(ctx context.Context, messages []*messaging.Message) (*messaging.BatchResponse, error)
}

type deviceRegistry interface {
	GetUserDevices(ctx context.Context, userID string) ([]models.DeviceRecord, error)
	RemoveInvalidToken(ctx context.Context, token string) error
}

type statsRecorder interface {
	Record(ctx context.Context, userID string, sent, failed int) error
}

// Failure describes one device the notification did not reach.
type Failure struct {
	DeviceID string `json:"deviceId"`
	Code     string `json:"code"`
}

// Result summarizes one SendNotification call.
type Result struct {
	Devices       int       `json:"devices"`
	Sent          int       `json:"sent"`
	Failed        int       `json:"failed"`
	InvalidTokens []string  `json:"invalidTokens,omitempty"`
	Failures      []Failure `json:"failures,omitempty"`
}

type Dispatcher struct {
	registry        deviceRegistry
	sender          Sender
	stats           statsRecorder
	defaultLanguage string
	logger          *zap.SugaredLogger
}

type Option func(*Dispatcher)

// WithStats records per-user delivery counters after every dispatch.
func WithStats(stats statsRecorder) Option {
	return func(d *Dispatcher) { d.stats = stats }
}

func NewDispatcher(registry deviceRegistry, sender Sender, defaultLanguage string, logger *zap.SugaredLogger, opts ...Option) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if defaultLanguage == "" {
		defaultLanguage = fallbackLanguage
	}
	d := &Dispatcher{
		registry:        registry,
		sender:          sender,
		defaultLanguage: defaultLanguage,
		logger:          logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SendNotification sends n to every device registered for userID. Each device
// gets the text for its own language, then language (or the configured
// default when empty), then English. Per-device failures do not fail the
// call; devices whose token FCM reports as unregistered are removed from the
// registry.
func (d *Dispatcher) SendNotification(ctx context.Context, userID string, n models.Notification, language string) (*Result, error) {
	devices, err := d.registry.GetUserDevices(ctx, userID)
	if err != nil {
		return nil, err
	}
	result := &Result{Devices: len(devices)}
	if len(devices) == 0 {
		return result, nil
	}
	if language == "" {
		language = d.defaultLanguage
	}

	messages := make([]*messaging.Message, len(devices))
	for i, rec := range devices {
		langs := []string{rec.Content.Language, language, fallbackLanguage}
		messages[i] = buildMessage(
			rec.Content,
			localize(n.Title, titlePlaceholder, langs...),
			localize(n.Body, bodyPlaceholder, langs...),
			n.Data,
		)
	}

	for start := 0; start < len(messages); start += maxBatchSize {
		end := min(start+maxBatchSize, len(messages))
		resp, err := d.sender.SendEach(ctx, messages[start:end])
		if err != nil {
			return nil, fmt.Errorf("send notification batch: %w", err)
		}
		if len(resp.Responses) != end-start {
			return nil, fmt.Errorf("send notification batch: got %d responses for %d messages", len(resp.Responses), end-start)
		}
		for i, r := range resp.Responses {
			d.handleResponse(ctx, userID, devices[start+i], r, result)
		}
	}

	if d.stats != nil {
		if err := d.stats.Record(ctx, userID, result.Sent, result.Failed); err != nil {
			d.logger.Warnw("failed to record notification stats", "user_id", userID, "error", err)
		}
	}
	d.logger.Infow("notification dispatched",
		"user_id", userID,
		"devices", result.Devices,
		"sent", result.Sent,
		"failed", result.Failed,
		"invalid_tokens", len(result.InvalidTokens),
	)
	return result, nil
}

func (d *Dispatcher) handleResponse(ctx context.Context, userID string, rec models.DeviceRecord, r *messaging.SendResponse, result *Result) {
	if r != nil && r.Success {
		result.Sent++
		return
	}
	result.Failed++

	var sendErr error
	if r != nil {
		sendErr = r.Error
	}
	code := ErrorCode(sendErr)
	if code == "" {
		code = ErrCodeUnknown
	}
	result.Failures = append(result.Failures, Failure{DeviceID: rec.ID, Code: code})

	if code != ErrCodeTokenNotRegistered {
		d.logger.Warnw("notification not delivered",
			"user_id", userID,
			"device_id", rec.ID,
			"platform", rec.Content.Platform,
			"code", code,
			"error", sendErr,
		)
		return
	}

	token := rec.Content.NotificationToken
	result.InvalidTokens = append(result.InvalidTokens, token)
	if err := d.registry.RemoveInvalidToken(ctx, token); err != nil {
		d.logger.Errorw("failed to remove invalid token",
			"user_id", userID,
			"device_id", rec.ID,
			"error", err,
		)
	}
}
