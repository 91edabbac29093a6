package models

import (
	"strings"
	"time"
)

// BookingNotice is what a notification about a booking needs to say.
type BookingNotice struct {
	ToEmail          string
	ToName           string
	Reference        string
	TourName         string
	MeetingPoint     string
	TourDate         time.Time
	StartTime        string
	ParticipantCount int
	TotalPriceCents  int64
	PaymentStatus    PaymentStatus
	BookingStatus    BookingStatus
}

// NoticeFor builds a notice from a booking loaded with its schedule and tour.
// An empty toName falls back to the local part of toEmail.
func NoticeFor(b Booking, toEmail, toName string) BookingNotice {
	if strings.TrimSpace(toName) == "" {
		toName, _, _ = strings.Cut(toEmail, "@")
	}
	n := BookingNotice{
		ToEmail:          toEmail,
		ToName:           toName,
		Reference:        b.Reference,
		TourDate:         b.TourDate,
		ParticipantCount: b.ParticipantCount,
		TotalPriceCents:  b.TotalPrice(),
		BookingStatus:    b.Status,
	}
	if b.Schedule != nil {
		n.StartTime = b.Schedule.StartTime
		if b.Schedule.Tour != nil {
			n.TourName = b.Schedule.Tour.Name
			n.MeetingPoint = b.Schedule.Tour.MeetingPoint
		}
	}
	return n
}
