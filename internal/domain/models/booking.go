package models

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled:
		return true
	}
	return false
}

// CountsAgainstCapacity is true for statuses included in the booked count.
func (s BookingStatus) CountsAgainstCapacity() bool {
	return s == BookingConfirmed
}

// Booking is the durable record created at the payment step.
type Booking struct {
	ID                  int64         `json:"id"`
	Reference           string        `json:"reference"`
	UserID              int64         `json:"user_id"`
	ScheduleID          int64         `json:"schedule_id"`
	BookingDate         time.Time     `json:"booking_date"`
	TourDate            time.Time     `json:"tour_date"`
	Status              BookingStatus `json:"status"`
	SpecialRequirements string        `json:"special_requirements"`

	// Filled by joins, not columns of bookings.
	ParticipantCount int           `json:"participant_count"`
	Schedule         *TourSchedule `json:"schedule,omitempty"`
}

// TotalPrice charges the booker and every participant at the tour price.
func TotalPrice(participantCount int, priceCents int64) int64 {
	return int64(participantCount+1) * priceCents
}

// TotalPrice needs the schedule's tour loaded; it returns 0 otherwise.
func (b Booking) TotalPrice() int64 {
	if b.Schedule == nil || b.Schedule.Tour == nil {
		return 0
	}
	return TotalPrice(b.ParticipantCount, b.Schedule.Tour.PriceCents)
}

type BookingParticipant struct {
	ID        int64  `json:"id"`
	BookingID int64  `json:"booking_id"`
	FullName  string `json:"full_name"`
	Age       *int   `json:"age"`
	Notes     string `json:"notes"`
}

// ParticipantInput is one full_name/age/notes triple collected at the participants step.
type ParticipantInput struct {
	FullName string `json:"full_name"`
	Age      *int   `json:"age"`
	Notes    string `json:"notes"`
}
