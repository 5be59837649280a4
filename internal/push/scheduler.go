package push

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	models "github.com/StanfordSpezi/spezi-firebase-sub000/internal/models/notifications"
)

type userLister interface {
	UsersWithDevices(ctx context.Context) ([]string, error)
}

type notificationSender interface {
	SendNotification(ctx context.Context, userID string, n models.Notification, language string) (*Result, error)
}

// ReminderScheduler sends the day's reminder to every user with a registered
// device on a cron schedule evaluated in UTC.
type ReminderScheduler struct {
	cron    *cron.Cron
	users   userLister
	sender  notificationSender
	content models.ReminderContent
	logger  *zap.SugaredLogger
	now     func() time.Time
}

func NewReminderScheduler(users userLister, sender notificationSender, content models.ReminderContent, logger *zap.SugaredLogger) *ReminderScheduler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &ReminderScheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		users:   users,
		sender:  sender,
		content: content,
		logger:  logger,
		now:     time.Now,
	}
}

// Start schedules the reminder run and starts the cron loop.
func (s *ReminderScheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, func() {
		if _, err := s.RunOnce(context.Background()); err != nil {
			s.logger.Errorw("daily reminder run failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule daily reminders %q: %w", spec, err)
	}
	s.cron.Start()
	s.logger.Infow("daily reminders scheduled", "schedule", spec)
	return nil
}

// Stop stops the cron loop. The returned context is done once a running job
// has finished.
func (s *ReminderScheduler) Stop() context.Context {
	return s.cron.Stop()
}

// RunOnce sends today's reminder to every user and returns how many users
// were reached on at least one device. A failure for one user is logged and
// does not stop the run.
func (s *ReminderScheduler) RunOnce(ctx context.Context) (int, error) {
	users, err := s.users.UsersWithDevices(ctx)
	if err != nil {
		return 0, err
	}
	reminder := s.content.ForDate(s.now())

	reached := 0
	for _, userID := range users {
		res, err := s.sender.SendNotification(ctx, userID, reminder, "")
		if err != nil {
			s.logger.Errorw("failed to send daily reminder", "user_id", userID, "error", err)
			continue
		}
		if res.Sent > 0 {
			reached++
		}
	}
	s.logger.Infow("daily reminders sent", "users", len(users), "reached", reached)
	return reached, nil
}
