package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"tourbooking/internal/domain/models"
	"tourbooking/internal/repositories"

	"github.com/robfig/cron/v3"
)

type fakeSource struct {
	day       time.Time
	reminders []repositories.Reminder
}

func (f *fakeSource) ConfirmedOn(_ context.Context, day time.Time) ([]repositories.Reminder, error) {
	f.day = day
	return f.reminders, nil
}

type fakeSender struct {
	to []string
}

func (f *fakeSender) TourReminder(_ context.Context, n models.BookingNotice) error {
	if n.ToEmail == "broken@example.com" {
		return errors.New("mailbox unavailable")
	}
	f.to = append(f.to, n.ToEmail)
	return nil
}

func TestReminderJobTargetsTomorrow(t *testing.T) {
	src := &fakeSource{reminders: []repositories.Reminder{
		{Booking: models.Booking{Reference: "AAAAAAAAAAA1"}, UserEmail: "ama@example.com", UserName: "Ama"},
		{Booking: models.Booking{Reference: "AAAAAAAAAAA2"}, UserEmail: "broken@example.com"},
		{Booking: models.Booking{Reference: "AAAAAAAAAAA3"}, UserEmail: "kofi@example.com"},
	}}
	sender := &fakeSender{}
	job := ReminderJob{
		Bookings: src,
		Notifier: sender,
		Now:      func() time.Time { return time.Date(2026, 10, 17, 8, 0, 0, 0, time.Local) },
	}

	if sent := job.Run(context.Background()); sent != 2 {
		t.Fatalf("expected 2 reminders sent, got %d", sent)
	}
	if want := time.Date(2026, 10, 18, 0, 0, 0, 0, time.Local); !src.day.Equal(want) {
		t.Fatalf("expected reminders for %v, got %v", want, src.day)
	}
	if len(sender.to) != 2 || sender.to[1] != "kofi@example.com" {
		t.Fatalf("unexpected recipients %v", sender.to)
	}
}

func TestReminderJobRegister(t *testing.T) {
	c := cron.New()
	if _, err := (ReminderJob{}).Register(c, "0 8 * * *"); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if _, err := (ReminderJob{}).Register(c, "not a cron spec"); err == nil {
		t.Fatalf("expected error for invalid spec")
	}
}
