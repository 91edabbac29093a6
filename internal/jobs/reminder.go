// Package jobs holds scheduled background work.
package jobs

import (
	"context"
	"time"

	"tourbooking/internal/domain/models"
	"tourbooking/internal/repositories"
	"tourbooking/internal/utils"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type ReminderSource interface {
	ConfirmedOn(ctx context.Context, day time.Time) ([]repositories.Reminder, error)
}

type ReminderSender interface {
	TourReminder(ctx context.Context, n models.BookingNotice) error
}

// ReminderJob emails everyone with a confirmed booking for tomorrow's tours.
type ReminderJob struct {
	Bookings ReminderSource
	Notifier ReminderSender
	Logger   *zap.Logger
	Now      func() time.Time
	Timeout  time.Duration
}

// Register adds the job to c under spec.
func (j ReminderJob) Register(c *cron.Cron, spec string) (cron.EntryID, error) {
	return c.AddFunc(spec, func() {
		timeout := j.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Minute
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		j.Run(ctx)
	})
}

// Run sends the reminders and returns how many were delivered.
func (j ReminderJob) Run(ctx context.Context) int {
	log := utils.OrNop(j.Logger)
	now := time.Now()
	if j.Now != nil {
		now = j.Now()
	}
	day := utils.StartOfDay(now).AddDate(0, 0, 1)

	reminders, err := j.Bookings.ConfirmedOn(ctx, day)
	if err != nil {
		log.Error("load reminders failed", zap.Error(err))
		return 0
	}

	sent := 0
	for _, r := range reminders {
		if err := ctx.Err(); err != nil {
			log.Warn("reminder run interrupted", zap.Error(err))
			break
		}
		notice := models.NoticeFor(r.Booking, r.UserEmail, r.UserName)
		if err := j.Notifier.TourReminder(ctx, notice); err != nil {
			log.Warn("reminder failed", zap.String("reference", r.Booking.Reference), zap.Error(err))
			continue
		}
		sent++
	}
	log.Info("tour reminders sent", zap.String("tour_date", utils.FormatDate(day)), zap.Int("sent", sent), zap.Int("due", len(reminders)))
	return sent
}
