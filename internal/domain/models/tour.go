package models

import (
	"fmt"
	"strings"
	"time"
)

// Weekly day slots a schedule can run on.
const (
	DaySaturday = "saturday"
	DaySunday   = "sunday"
)

// Tour is a bookable product. PriceCents is per person.
type Tour struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	DurationHours   int    `json:"duration_hours"`
	PriceCents      int64  `json:"price_cents"`
	MaxParticipants int    `json:"max_participants"`
	Highlights      string `json:"highlights"`
	WhatIncluded    string `json:"what_included"`
	WhatToBring     string `json:"what_to_bring"`
	MeetingPoint    string `json:"meeting_point"`
	ImageURL        string `json:"image_url"`
}

func (t Tour) HighlightsList() []string   { return splitLines(t.Highlights) }
func (t Tour) WhatIncludedList() []string { return splitLines(t.WhatIncluded) }
func (t Tour) WhatToBringList() []string  { return splitLines(t.WhatToBring) }

func splitLines(s string) []string {
	out := []string{}
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// TourSchedule is one dated slot of a tour. Tour is filled when loaded with a join.
type TourSchedule struct {
	ID        int64     `json:"id"`
	TourID    int64     `json:"tour_id"`
	Day       string    `json:"day"`
	Date      time.Time `json:"date"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Tour      *Tour     `json:"tour,omitempty"`
}

func (s TourSchedule) String() string {
	name := ""
	if s.Tour != nil {
		name = s.Tour.Name
	}
	return fmt.Sprintf("%s - %s %s", name, s.Day, s.StartTime)
}

// Capacity is derived from confirmed bookings on a schedule, never stored.
type Capacity struct {
	MaxParticipants int  `json:"max_participants"`
	Booked          int  `json:"booked_count"`
	Remaining       int  `json:"remaining_slots"`
	FullyBooked     bool `json:"is_fully_booked"`
}

// NewCapacity derives remaining slots from the tour ceiling and the booked slot count.
func NewCapacity(maxParticipants, booked int) Capacity {
	remaining := maxParticipants - booked
	return Capacity{
		MaxParticipants: maxParticipants,
		Booked:          booked,
		Remaining:       remaining,
		FullyBooked:     remaining <= 0,
	}
}

// Allows reports whether the booker plus extra participants fit.
func (c Capacity) Allows(extraParticipants int) bool {
	return extraParticipants >= 0 && extraParticipants+1 <= c.Remaining
}

// Available is the remaining slot count clamped at zero, for user-facing messages.
func (c Capacity) Available() int {
	if c.Remaining < 0 {
		return 0
	}
	return c.Remaining
}

// SpotsMessage is the rejection text used when a booking does not fit.
func (c Capacity) SpotsMessage() string {
	return fmt.Sprintf("Only %d total spots available.", c.Available())
}

// ScheduleWithCapacity pairs a schedule with its derived capacity.
type ScheduleWithCapacity struct {
	TourSchedule
	Capacity Capacity `json:"capacity"`
}
