package services

import (
	"context"
	"strings"
	"time"

	"tourbooking/internal/domain"
	"tourbooking/internal/domain/models"
	"tourbooking/internal/repositories"
	"tourbooking/internal/utils"
)

// StatusFilters is the fixed order of booking list filters.
var StatusFilters = []string{
	repositories.FilterAll,
	repositories.FilterUpcoming,
	repositories.FilterConfirmed,
	repositories.FilterPending,
	repositories.FilterCancelled,
}

// NormalizeStatusFilter maps unknown or empty filters to "all".
func NormalizeStatusFilter(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	for _, f := range StatusFilters {
		if raw == f {
			return f
		}
	}
	return repositories.FilterAll
}

type ListingService struct {
	Tours    repositories.TourRepository
	Bookings repositories.BookingRepository
	Capacity CapacityService
	Now      func() time.Time
}

type BookingSummary struct {
	models.Booking
	TotalPriceCents int64  `json:"total_price_cents"`
	TotalPrice      string `json:"total_price"`
}

type BookingPage struct {
	Bookings   []BookingSummary  `json:"bookings"`
	Pagination domain.Pagination `json:"pagination"`
	Status     string            `json:"status"`
}

type TourPage struct {
	Tours      []models.Tour     `json:"tours"`
	Pagination domain.Pagination `json:"pagination"`
	Query      string            `json:"query"`
}

type TourDetail struct {
	Tour         models.Tour                   `json:"tour"`
	Highlights   []string                      `json:"highlights"`
	WhatIncluded []string                      `json:"what_included"`
	WhatToBring  []string                      `json:"what_to_bring"`
	Schedules    []models.ScheduleWithCapacity `json:"schedules"`
}

func (s ListingService) today() time.Time {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	return utils.StartOfDay(now)
}

func (s ListingService) capacity() CapacityService {
	if s.Capacity.Catalog != nil {
		return s.Capacity
	}
	return CapacityService{Catalog: SQLCatalog{Tours: s.Tours, Bookings: s.Bookings}}
}

// ListBookings returns one page of the user's bookings, most recent first.
func (s ListingService) ListBookings(ctx context.Context, userID domain.ID, status, rawPage string) (BookingPage, error) {
	filter := repositories.BookingFilter{Status: NormalizeStatusFilter(status), Today: s.today()}

	total, err := s.Bookings.CountForUser(ctx, int64(userID), filter)
	if err != nil {
		return BookingPage{}, domain.InternalError{Msg: "count bookings", Err: err}
	}
	page := domain.NewPagination(rawPage, domain.BookingsPageSize, total)

	rows, err := s.Bookings.ListForUser(ctx, int64(userID), filter, page.PageSize, page.Offset())
	if err != nil {
		return BookingPage{}, domain.InternalError{Msg: "list bookings", Err: err}
	}
	out := make([]BookingSummary, 0, len(rows))
	for _, b := range rows {
		total := b.TotalPrice()
		out = append(out, BookingSummary{Booking: b, TotalPriceCents: total, TotalPrice: utils.FormatMoney(total)})
	}
	return BookingPage{Bookings: out, Pagination: page, Status: filter.Status}, nil
}

// ListTours returns tours alphabetically with an optional name filter.
func (s ListingService) ListTours(ctx context.Context, query, rawPage string) (TourPage, error) {
	query = strings.TrimSpace(query)
	total, err := s.Tours.Count(ctx, query)
	if err != nil {
		return TourPage{}, domain.InternalError{Msg: "count tours", Err: err}
	}
	page := domain.NewPagination(rawPage, domain.ToursPageSize, total)

	tours, err := s.Tours.List(ctx, query, page.PageSize, page.Offset())
	if err != nil {
		return TourPage{}, domain.InternalError{Msg: "list tours", Err: err}
	}
	return TourPage{Tours: tours, Pagination: page, Query: query}, nil
}

// TourDetail returns a tour with every schedule and its capacity.
func (s ListingService) TourDetail(ctx context.Context, tourID int64) (TourDetail, error) {
	if tourID <= 0 {
		return TourDetail{}, domain.NotFoundError{Resource: "tour"}
	}
	tour, err := s.Tours.GetByID(ctx, tourID)
	if err != nil {
		return TourDetail{}, wrapInternal(err)
	}
	schedules, err := s.Tours.ListSchedules(ctx, tourID)
	if err != nil {
		return TourDetail{}, domain.InternalError{Msg: "list schedules", Err: err}
	}

	capacity := s.capacity()
	out := make([]models.ScheduleWithCapacity, 0, len(schedules))
	for _, sc := range schedules {
		sc.Tour = &tour
		c, err := capacity.Of(ctx, sc)
		if err != nil {
			return TourDetail{}, err
		}
		sc.Tour = nil
		out = append(out, models.ScheduleWithCapacity{TourSchedule: sc, Capacity: c})
	}
	return TourDetail{
		Tour:         tour,
		Highlights:   tour.HighlightsList(),
		WhatIncluded: tour.WhatIncludedList(),
		WhatToBring:  tour.WhatToBringList(),
		Schedules:    out,
	}, nil
}
